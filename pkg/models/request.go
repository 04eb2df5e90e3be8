package models

// SearchCriteria represents the request payload for a property search and analysis
type SearchCriteria struct {
	City             string   `json:"city" validate:"required"`
	State            string   `json:"state,omitempty"`
	MinPrice         int64    `json:"min_price" validate:"gte=0"`
	MaxPrice         int64    `json:"max_price" validate:"gte=0"`
	PropertyType     string   `json:"property_type"`
	Bedrooms         string   `json:"bedrooms"`
	Bathrooms        string   `json:"bathrooms"`
	MinSqft          int64    `json:"min_sqft" validate:"gte=0"`
	SpecialFeatures  string   `json:"special_features"`
	SelectedWebsites []string `json:"selected_websites" validate:"required"`
}

// NewSearchCriteria returns criteria pre-filled with the defaults for omitted fields.
// Bind the request body into the returned value so absent keys keep their defaults.
func NewSearchCriteria() SearchCriteria {
	return SearchCriteria{
		PropertyType: "Any",
		Bedrooms:     "Any",
		Bathrooms:    "Any",
	}
}

// UserCriteria is the buyer preference mapping handed to the analysis routine
type UserCriteria struct {
	BudgetRange     string `json:"budget_range"`
	PropertyType    string `json:"property_type"`
	Bedrooms        string `json:"bedrooms"`
	Bathrooms       string `json:"bathrooms"`
	MinSqft         int64  `json:"min_sqft"`
	SpecialFeatures string `json:"special_features"`
}

// MarketRequest bundles what the LLM needs to write a market analysis or valuation
type MarketRequest struct {
	City       string
	State      string
	Criteria   UserCriteria
	Properties []map[string]interface{}
}
