package models

import "strings"

// Product is one shopping search listing, normalized from the raw API item.
// Title is plain text (HTML stripped); prices are in won with 0 meaning unknown.
// Products are created once per search result and never mutated.
type Product struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	LPrice      int    `json:"lprice"`
	HPrice      int    `json:"hprice"`
	MallName    string `json:"mall_name"`
	ProductID   string `json:"product_id"`
	ProductType string `json:"product_type"`
	Brand       string `json:"brand"`
	Maker       string `json:"maker"`
	Category1   string `json:"category1"`
	Category2   string `json:"category2"`
	Category3   string `json:"category3"`
	Category4   string `json:"category4"`
}

// CategoryPath joins the non-empty category levels with " > ".
func (p *Product) CategoryPath() string {
	cats := []string{p.Category1, p.Category2, p.Category3, p.Category4}
	var parts []string
	for _, c := range cats {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " > ")
}

// BrandOrUnknown returns the brand name, or the "unknown" placeholder used
// throughout brand frequency ranking when a listing carries no brand.
func (p *Product) BrandOrUnknown() string {
	if p.Brand == "" {
		return "unknown"
	}
	return p.Brand
}

// PositivePrices extracts the low prices greater than zero from a product list.
func PositivePrices(products []*Product) []int {
	var prices []int
	for _, p := range products {
		if p.LPrice > 0 {
			prices = append(prices, p.LPrice)
		}
	}
	return prices
}
