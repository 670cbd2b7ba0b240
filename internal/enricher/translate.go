package enricher

// categoryTranslations maps the site's French category tokens to neutral
// labels. Untranslated tokens fall through unchanged.
var categoryTranslations = map[string]string{
	"vetements":   "clothing",
	"chaussures":  "shoes",
	"accessoires": "accessories",
}

// currencyByCountry maps storefront countries to their currency code.
var currencyByCountry = map[string]string{
	"fr": "EUR",
	"us": "USD",
	"uk": "GBP",
}

const defaultCurrency = "EUR"

// TranslateCategory returns the neutral label for a category token, or the
// token itself when no translation exists.
func TranslateCategory(token string) string {
	if translated, ok := categoryTranslations[token]; ok {
		return translated
	}
	return token
}

// CurrencyFor returns the currency code for a country, falling back to the
// default for unrecognized countries.
func CurrencyFor(country string) string {
	if currency, ok := currencyByCountry[country]; ok {
		return currency
	}
	return defaultCurrency
}
