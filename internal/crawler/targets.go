package crawler

// listingURLs maps country → gender → category → listing URL. The site keeps
// French gender/category tokens for every storefront.
var listingURLs = map[string]map[string]map[string]string{
	"fr": {
		"hommes": {
			"chaussures":  "https://www.adidas.fr/chaussures-hommes",
			"vetements":   "https://www.adidas.fr/vetements-hommes",
			"accessoires": "https://www.adidas.fr/accessoires-hommes",
		},
		"femmes": {
			"chaussures":  "https://www.adidas.fr/chaussures-femmes",
			"vetements":   "https://www.adidas.fr/vetements-femmes",
			"accessoires": "https://www.adidas.fr/accessoires-femmes",
		},
	},
	"us": {
		"hommes": {
			"chaussures":  "https://www.adidas.com/us/shoes-men",
			"vetements":   "https://www.adidas.com/us/clothing-men",
			"accessoires": "https://www.adidas.com/us/accessories-men",
		},
		"femmes": {
			"chaussures":  "https://www.adidas.com/us/shoes-women",
			"vetements":   "https://www.adidas.com/us/clothing-women",
			"accessoires": "https://www.adidas.com/us/accessories-women",
		},
	},
	"uk": {
		"hommes": {
			"chaussures":  "https://www.adidas.co.uk/shoes-men",
			"vetements":   "https://www.adidas.co.uk/clothing-men",
			"accessoires": "https://www.adidas.co.uk/accessories-men",
		},
		"femmes": {
			"chaussures":  "https://www.adidas.co.uk/shoes-women",
			"vetements":   "https://www.adidas.co.uk/clothing-women",
			"accessoires": "https://www.adidas.co.uk/accessories-women",
		},
	},
}

var (
	genderOrder   = []string{"hommes", "femmes"}
	categoryOrder = []string{"chaussures", "vetements", "accessoires"}
)

// TargetsFor flattens the listing map into an explicit target list for the
// requested countries, in a stable processing order. Countries without a
// configured storefront are skipped.
func TargetsFor(countries []string) []Target {
	var targets []Target
	for _, country := range countries {
		genders, ok := listingURLs[country]
		if !ok {
			continue
		}
		for _, gender := range genderOrder {
			categories, ok := genders[gender]
			if !ok {
				continue
			}
			for _, category := range categoryOrder {
				url, ok := categories[category]
				if !ok {
					continue
				}
				targets = append(targets, Target{
					Country:    country,
					Gender:     gender,
					Category:   category,
					ListingURL: url,
				})
			}
		}
	}
	return targets
}
