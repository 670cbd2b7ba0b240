package enricher

// apiResponse is the product API envelope.
type apiResponse struct {
	Product apiProduct `json:"product"`
}

type apiProduct struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	Image      string       `json:"image"`
	HoverImage string       `json:"hoverImage"`
	PriceData  apiPriceData `json:"priceData"`
}

type apiPriceData struct {
	Price     *float64 `json:"price"`
	SalePrice *float64 `json:"salePrice"`
}

// PriceInfo carries the resolved pricing fields. IsDiscount is always
// computed from the two values, never taken from upstream.
type PriceInfo struct {
	Original   float64 `json:"value_original"`
	Current    float64 `json:"current_price"`
	IsDiscount bool    `json:"is_Discount"`
	Currency   string  `json:"currency"`
}

// ImageRef describes one acquired product image. Role is "main" or "hover".
type ImageRef struct {
	Role      string `json:"type"`
	SourceURL string `json:"url"`
	LocalPath string `json:"local_path"`
}

// ProductRecord is the canonical enriched product entity persisted per input
// code.
type ProductRecord struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	Color       string     `json:"color"`
	Category    string     `json:"category"`
	Section     string     `json:"section"`
	Country     string     `json:"country"`
	Price       PriceInfo  `json:"price"`
	URL         string     `json:"url"`
	ProductCode string     `json:"product_code"`
	Images      []ImageRef `json:"images"`
}
