package crawler

// Target identifies one crawlable listing: a (country, gender, category)
// combination with its listing URL.
type Target struct {
	Country    string
	Gender     string
	Category   string
	ListingURL string
}

// Key returns the target's context string used in logs and rejection lines.
func (t Target) Key() string {
	return t.Country + "/" + t.Gender + "/" + t.Category
}

// ProductRef is one product discovered on a listing page: its absolute link
// and the code derived from the link path.
type ProductRef struct {
	Link string
	Code string
}
