package countries

// MarketplaceCountry is a country a listing can be published in.
type MarketplaceCountry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
	Flag     string `json:"flag"`
}

// Category is a marketplace listing category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var marketplaceCountries = []MarketplaceCountry{
	{Code: "TZ", Name: "Tanzania", Currency: "TZS", Symbol: "TSh", Flag: "🇹🇿"},
	{Code: "KE", Name: "Kenya", Currency: "KES", Symbol: "KSh", Flag: "🇰🇪"},
	{Code: "UG", Name: "Uganda", Currency: "UGX", Symbol: "USh", Flag: "🇺🇬"},
	{Code: "NG", Name: "Nigeria", Currency: "NGN", Symbol: "₦", Flag: "🇳🇬"},
	{Code: "ZA", Name: "South Africa", Currency: "ZAR", Symbol: "R", Flag: "🇿🇦"},
	{Code: "ET", Name: "Ethiopia", Currency: "ETB", Symbol: "Br", Flag: "🇪🇹"},
	{Code: "EG", Name: "Egypt", Currency: "EGP", Symbol: "E£", Flag: "🇪🇬"},
	{Code: "GH", Name: "Ghana", Currency: "GHS", Symbol: "GH₵", Flag: "🇬🇭"},
	{Code: "US", Name: "United States", Currency: "USD", Symbol: "$", Flag: "🇺🇸"},
	{Code: "GB", Name: "United Kingdom", Currency: "GBP", Symbol: "£", Flag: "🇬🇧"},
	{Code: "CN", Name: "China", Currency: "CNY", Symbol: "¥", Flag: "🇨🇳"},
	{Code: "IN", Name: "India", Currency: "INR", Symbol: "₹", Flag: "🇮🇳"},
	{Code: "AE", Name: "UAE", Currency: "AED", Symbol: "AED", Flag: "🇦🇪"},
}

var categories = []Category{
	{ID: "electronics", Name: "Electronics"},
	{ID: "books", Name: "Books"},
	{ID: "services", Name: "Services"},
	{ID: "real_estate", Name: "Real Estate"},
	{ID: "vehicles", Name: "Vehicles"},
	{ID: "furniture", Name: "Furniture"},
	{ID: "clothing", Name: "Clothing"},
	{ID: "sports", Name: "Sports & Fitness"},
	{ID: "home_garden", Name: "Home & Garden"},
	{ID: "business", Name: "Business & Industrial"},
}

// MarketplaceCountries lists the countries listings can be published in.
func MarketplaceCountries() []MarketplaceCountry {
	out := make([]MarketplaceCountry, len(marketplaceCountries))
	copy(out, marketplaceCountries)
	return out
}

// Categories lists the marketplace categories.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// MarketplaceCountryByCode looks up a marketplace country by its ISO code.
func MarketplaceCountryByCode(code string) (MarketplaceCountry, bool) {
	for _, c := range marketplaceCountries {
		if c.Code == code {
			return c, true
		}
	}
	return MarketplaceCountry{}, false
}

// IsCategory reports whether id names a marketplace category.
func IsCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Fallback is the country list served when the directory cannot be reached, sorted by name.
func Fallback() []Country {
	out := make([]Country, 0, len(marketplaceCountries))
	for _, c := range marketplaceCountries {
		out = append(out, Country{Name: c.Name, Flag: c.Flag})
	}
	sortByName(out)
	return out
}
