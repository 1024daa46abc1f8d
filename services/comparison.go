package services

import (
	"sort"

	"naver-market-research/models"
)

// ValueStats is the price summary of the products sharing one feature value.
type ValueStats struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	MinPrice int    `json:"min_price"`
	MaxPrice int    `json:"max_price"`
	AvgPrice int    `json:"avg_price"`
}

// FeatureGroup aggregates one annotation key across a keyword's products,
// values ordered by descending frequency (first-seen tie-break).
type FeatureGroup struct {
	Key    string       `json:"key"`
	Values []ValueStats `json:"values"`
}

// GroupByFeature parses every saved annotation of the product list and groups
// products by annotation key and value, with per-value price statistics.
// Products without a positive price or without annotation text are skipped.
// Keys keep the order they were first encountered in rank order.
func GroupByFeature(products []*models.Product, annotations map[string]models.Annotation) []FeatureGroup {
	type entry struct {
		value string
		price int
	}

	keyOrder := []string{}
	byKey := map[string][]entry{}

	for _, p := range products {
		if p.LPrice <= 0 {
			continue
		}
		ann, ok := annotations[p.ProductID]
		if !ok || ann.Empty() {
			continue
		}
		pairs := ParseAnnotation(ann.Features)
		for _, key := range pairs.Keys() {
			val, _ := pairs.Get(key)
			if _, seen := byKey[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			byKey[key] = append(byKey[key], entry{value: val, price: p.LPrice})
		}
	}

	groups := make([]FeatureGroup, 0, len(keyOrder))
	for _, key := range keyOrder {
		valueOrder := []string{}
		prices := map[string][]int{}
		for _, e := range byKey[key] {
			if _, seen := prices[e.value]; !seen {
				valueOrder = append(valueOrder, e.value)
			}
			prices[e.value] = append(prices[e.value], e.price)
		}

		stats := make([]ValueStats, 0, len(valueOrder))
		for _, val := range valueOrder {
			ps := prices[val]
			minP, maxP, sum := ps[0], ps[0], 0
			for _, p := range ps {
				sum += p
				if p < minP {
					minP = p
				}
				if p > maxP {
					maxP = p
				}
			}
			stats = append(stats, ValueStats{
				Value:    val,
				Count:    len(ps),
				MinPrice: minP,
				MaxPrice: maxP,
				AvgPrice: sum / len(ps),
			})
		}
		sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })

		groups = append(groups, FeatureGroup{Key: key, Values: stats})
	}
	return groups
}

// CollectFeatureCounts tallies value frequency per annotation key, the shape
// the cross-keyword comparison view works with.
func CollectFeatureCounts(products []*models.Product, annotations map[string]models.Annotation) map[string]map[string]int {
	data := map[string]map[string]int{}
	for _, p := range products {
		ann, ok := annotations[p.ProductID]
		if !ok || ann.Empty() {
			continue
		}
		pairs := ParseAnnotation(ann.Features)
		for _, key := range pairs.Keys() {
			val, _ := pairs.Get(key)
			if data[key] == nil {
				data[key] = map[string]int{}
			}
			data[key][val]++
		}
	}
	return data
}

// BrandCounts ranks every brand in the product list by frequency,
// highest first, unbranded listings grouped under "unknown".
func BrandCounts(products []*models.Product) []BrandCount {
	return topN(countBrands(products), len(products))
}

// TopBrands returns the n most frequent brands.
func TopBrands(products []*models.Product, n int) []BrandCount {
	return topN(countBrands(products), n)
}
