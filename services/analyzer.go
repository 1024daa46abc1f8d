package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"naver-market-research/models"
	"naver-market-research/utils"
)

// segmentCharacteristics are fixed per-quartile labels, low-end to premium.
var segmentCharacteristics = [4]string{"저가 영역", "중저가 영역", "중고가 영역", "프리미엄 영역"}

// stopwords excluded from key-feature mining of product titles.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"for": true, "with": true, "in": true, "of": true, "to": true,
	"및": true, "외": true, "용": true,
}

// FallbackAnalyzer produces a market summary from the product list alone,
// without any AI call. It is used when no AI credential is configured.
type FallbackAnalyzer struct {
	logger *utils.Logger
}

// NewFallbackAnalyzer creates a rule-based analyzer.
func NewFallbackAnalyzer(logger *utils.Logger) *FallbackAnalyzer {
	return &FallbackAnalyzer{logger: logger}
}

// BrandCount pairs a brand with its frequency. Counting preserves first-seen
// order, and ranking sorts stably on descending count, so ties resolve to the
// brand encountered first.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// Analyze segments the market into four price quartiles and summarizes brand
// concentration and frequent title keywords. A product list with no positive
// prices yields a degraded-but-valid result, never an error.
func (a *FallbackAnalyzer) Analyze(keyword string, products []*models.Product) *models.AnalysisResult {
	prices := models.PositivePrices(products)

	if len(prices) == 0 {
		a.logger.Warn("[analyzer] %q: no price data, returning empty analysis", keyword)
		return &models.AnalysisResult{
			Keyword:              keyword,
			ProductCount:         len(products),
			PriceSegments:        []models.PriceSegment{},
			MarketOverview:       "가격 데이터가 없어 분석할 수 없습니다.",
			WhiteSpace:           []string{},
			CompetitiveLandscape: "",
			KeyFeatures:          []string{},
		}
	}

	sort.Ints(prices)
	segments := a.buildSegments(prices, products)

	allBrands := countBrands(products)
	topBrands := topN(allBrands, 5)
	brandText := brandSummary(topBrands)

	minP, maxP := prices[0], prices[len(prices)-1]
	avgP := sumInts(prices) / len(prices)

	overview := fmt.Sprintf(
		"'%s' 시장은 %s원~%s원 범위에 %d개 상품이 분포합니다. "+
			"평균 가격은 %s원이며, 주요 브랜드는 %s입니다. "+
			"(AI 분석을 위해 GEMINI_API_KEY를 설정해주세요)",
		keyword, formatWon(minP), formatWon(maxP), len(products), formatWon(avgP), brandText)

	landscape := fmt.Sprintf("상위 브랜드: %s. 총 %d개 브랜드가 경쟁 중입니다.",
		brandText, len(allBrands))

	a.logger.Info("[analyzer] %q: %d segments, %d brands, %d products",
		keyword, len(segments), len(allBrands), len(products))

	return &models.AnalysisResult{
		Keyword:              keyword,
		ProductCount:         len(products),
		PriceSegments:        segments,
		MarketOverview:       overview,
		WhiteSpace:           []string{"AI API 키를 설정하면 화이트스페이스 분석이 제공됩니다."},
		CompetitiveLandscape: landscape,
		KeyFeatures:          a.mineKeyFeatures(products),
	}
}

// buildSegments splits the sorted positive prices into 4 quartile segments.
// The five boundary values are the array ends plus the values at n/4, n/2 and
// 3n/4; each segment is inclusive at both ends, so a product priced exactly on
// a boundary is counted in both neighboring segments.
func (a *FallbackAnalyzer) buildSegments(prices []int, products []*models.Product) []models.PriceSegment {
	n := len(prices)
	bounds := [5]int{prices[0], prices[n/4], prices[n/2], prices[3*n/4], prices[n-1]}

	segments := make([]models.PriceSegment, 0, 4)
	for i := 0; i < 4; i++ {
		low, high := bounds[i], bounds[i+1]

		var members []*models.Product
		for _, p := range products {
			if p.LPrice >= low && p.LPrice <= high {
				members = append(members, p)
			}
		}

		sum := 0
		for _, p := range members {
			sum += p.LPrice
		}
		avg := 0
		if len(members) > 0 {
			avg = sum / len(members)
		}

		top := topN(countBrands(members), 3)
		brands := make([]string, 0, len(top))
		for _, bc := range top {
			brands = append(brands, bc.Brand)
		}

		segments = append(segments, models.PriceSegment{
			Range:                fmt.Sprintf("%s원 ~ %s원", formatWon(low), formatWon(high)),
			Count:                len(members),
			AvgPrice:             avg,
			Characteristics:      segmentCharacteristics[i],
			RepresentativeBrands: brands,
		})
	}

	return segments
}

// mineKeyFeatures extracts frequent title tokens: split on whitespace, rank by
// count (first-seen order among equal counts), take the 30 most frequent, drop
// single-character tokens, stopwords and tokens seen fewer than twice, and
// keep the first 15 that survive the filter.
func (a *FallbackAnalyzer) mineKeyFeatures(products []*models.Product) []string {
	type tokenCount struct {
		Token string
		Count int
	}

	index := make(map[string]int)
	var counts []tokenCount
	for _, p := range products {
		for _, tok := range strings.Fields(p.Title) {
			if i, ok := index[tok]; ok {
				counts[i].Count++
				continue
			}
			index[tok] = len(counts)
			counts = append(counts, tokenCount{Token: tok})
			counts[len(counts)-1].Count = 1
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > 30 {
		counts = counts[:30]
	}

	features := make([]string, 0, 15)
	for _, tc := range counts {
		if utf8.RuneCountInString(tc.Token) <= 1 || stopwords[tc.Token] || tc.Count < 2 {
			continue
		}
		features = append(features, tc.Token)
		if len(features) == 15 {
			break
		}
	}
	return features
}

// countBrands tallies brand frequency in first-seen order, mapping unbranded
// products to the "unknown" placeholder.
func countBrands(products []*models.Product) []BrandCount {
	index := make(map[string]int)
	var counts []BrandCount
	for _, p := range products {
		b := p.BrandOrUnknown()
		if i, ok := index[b]; ok {
			counts[i].Count++
			continue
		}
		index[b] = len(counts)
		counts = append(counts, BrandCount{Brand: b, Count: 1})
	}
	return counts
}

// topN returns the n highest-frequency entries, stable on first-seen order.
func topN(counts []BrandCount, n int) []BrandCount {
	ranked := make([]BrandCount, len(counts))
	copy(ranked, counts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func brandSummary(counts []BrandCount) string {
	parts := make([]string, 0, len(counts))
	for _, bc := range counts {
		parts = append(parts, fmt.Sprintf("%s(%d건)", bc.Brand, bc.Count))
	}
	return strings.Join(parts, ", ")
}

// formatWon renders an integer price with thousands separators (12000 → "12,000").
func formatWon(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
