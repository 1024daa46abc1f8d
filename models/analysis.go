package models

// PriceSegment is one contiguous price bucket of an analysis.
// Range is a human-readable "X원 ~ Y원" label; the JSON tags match the
// structure the AI collaborator is asked to return.
type PriceSegment struct {
	Range                string   `json:"range"`
	Count                int      `json:"count"`
	AvgPrice             int      `json:"avg_price"`
	Characteristics      string   `json:"characteristics"`
	RepresentativeBrands []string `json:"representative_brands"`
}

// AnalysisResult is the market summary for one keyword. It is created once per
// analysis run and never mutated; re-analyzing a keyword replaces the whole
// result rather than merging into it.
type AnalysisResult struct {
	Keyword              string         `json:"keyword"`
	ProductCount         int            `json:"product_count"`
	PriceSegments        []PriceSegment `json:"price_segments"`
	MarketOverview       string         `json:"market_overview"`
	WhiteSpace           []string       `json:"white_space"`
	CompetitiveLandscape string         `json:"competitive_landscape"`
	KeyFeatures          []string       `json:"key_features"`
	RawAIResponse        string         `json:"raw_ai_response,omitempty"`
}

// SearchSession summarizes one persisted search run.
type SearchSession struct {
	ID           string `json:"id"`
	Keyword      string `json:"keyword"`
	SortType     string `json:"sort_type"`
	ProductCount int    `json:"product_count"`
	MinPrice     int    `json:"min_price"`
	MaxPrice     int    `json:"max_price"`
	AvgPrice     int    `json:"avg_price"`
	CreatedAt    string `json:"created_at"`
}
