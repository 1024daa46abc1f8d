package services

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"naver-market-research/models"
	"naver-market-research/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func sampleProducts() []*models.Product {
	return []*models.Product{
		{Title: "모니터암 듀얼 거치대", LPrice: 15000, Brand: "카멜"},
		{Title: "모니터암 싱글 스탠드", LPrice: 32000, Brand: "카멜"},
		{Title: "모니터암 듀얼 프리미엄", LPrice: 59000, Brand: "에르고"},
		{Title: "모니터암 풀모션 거치대", LPrice: 89000, Brand: "NB"},
		{Title: "모니터암 고급형 듀얼", LPrice: 120000, Brand: ""},
		{Title: "모니터암 알루미늄 스탠드", LPrice: 45000, Brand: "에르고"},
		{Title: "모니터암 베사 거치대", LPrice: 27000, Brand: "카멜"},
		{Title: "모니터암 공식 스토어", LPrice: 0, Brand: "NB"},
	}
}

func TestFallbackNoPriceData(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())
	products := []*models.Product{
		{Title: "가격 미표기 상품 A", LPrice: 0},
		{Title: "가격 미표기 상품 B", LPrice: 0},
	}

	r := a.Analyze("책상", products)
	if len(r.PriceSegments) != 0 {
		t.Errorf("expected 0 segments, got %d", len(r.PriceSegments))
	}
	if r.MarketOverview != "가격 데이터가 없어 분석할 수 없습니다." {
		t.Errorf("unexpected overview: %q", r.MarketOverview)
	}
	if r.ProductCount != 2 {
		t.Errorf("ProductCount: got %d, want 2", r.ProductCount)
	}
}

func TestFallbackFourSegments(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())
	products := sampleProducts()

	r := a.Analyze("모니터암", products)
	if len(r.PriceSegments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(r.PriceSegments))
	}

	// Boundary products may be double-counted, so segment counts must cover
	// at least every positively priced product.
	positive := len(models.PositivePrices(products))
	total := 0
	for _, seg := range r.PriceSegments {
		total += seg.Count
	}
	if total < positive {
		t.Errorf("segment counts sum %d < %d positively priced products", total, positive)
	}

	wantCharacteristics := []string{"저가 영역", "중저가 영역", "중고가 영역", "프리미엄 영역"}
	for i, seg := range r.PriceSegments {
		if seg.Characteristics != wantCharacteristics[i] {
			t.Errorf("segment %d characteristics: got %q, want %q", i, seg.Characteristics, wantCharacteristics[i])
		}
	}
}

func TestFallbackSegmentRangesNonDecreasing(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())
	r := a.Analyze("모니터암", sampleProducts())

	// 7 positive prices sorted: 15000 27000 32000 45000 59000 89000 120000
	// boundaries at indexes 0, 1, 3, 5, 6.
	wantRanges := []string{
		"15,000원 ~ 27,000원",
		"27,000원 ~ 45,000원",
		"45,000원 ~ 89,000원",
		"89,000원 ~ 120,000원",
	}
	for i, seg := range r.PriceSegments {
		if seg.Range != wantRanges[i] {
			t.Errorf("segment %d range: got %q, want %q", i, seg.Range, wantRanges[i])
		}
	}
}

func TestFallbackOverviewMentionsBrands(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())
	r := a.Analyze("모니터암", sampleProducts())

	if !strings.Contains(r.MarketOverview, "카멜(3건)") {
		t.Errorf("overview should mention top brand 카멜(3건): %q", r.MarketOverview)
	}
	if !strings.Contains(r.CompetitiveLandscape, "브랜드가 경쟁 중입니다") {
		t.Errorf("unexpected competitive landscape: %q", r.CompetitiveLandscape)
	}
	if len(r.WhiteSpace) != 1 {
		t.Errorf("fallback white space should be a single placeholder, got %d entries", len(r.WhiteSpace))
	}
}

func TestTopBrandRankingIsStable(t *testing.T) {
	products := []*models.Product{
		{Brand: "A"}, {Brand: "A"}, {Brand: "B"}, {Brand: "B"}, {Brand: "C"},
	}

	first := topN(countBrands(products), 2)
	for i := 0; i < 50; i++ {
		got := topN(countBrands(products), 2)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: ranking not reproducible: %v vs %v", i, got, first)
		}
	}

	// Ties break on first-seen order: A before B.
	if first[0].Brand != "A" || first[1].Brand != "B" {
		t.Errorf("top-2: got [%s %s], want [A B]", first[0].Brand, first[1].Brand)
	}
}

func TestUnbrandedCountsAsUnknown(t *testing.T) {
	products := []*models.Product{{Brand: ""}, {Brand: ""}, {Brand: "X"}}
	counts := countBrands(products)
	if counts[0].Brand != "unknown" || counts[0].Count != 2 {
		t.Errorf("unbranded grouping: got %+v", counts[0])
	}
}

func TestMineKeyFeatures(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())

	var products []*models.Product
	for i := 0; i < 3; i++ {
		products = append(products, &models.Product{Title: "모니터암 듀얼 거치대 및 a"})
	}
	products = append(products, &models.Product{Title: "단독토큰 한번만"})

	features := a.mineKeyFeatures(products)

	for _, f := range features {
		if f == "및" || f == "a" {
			t.Errorf("stopword %q should be filtered", f)
		}
		if f == "단독토큰" || f == "한번만" {
			t.Errorf("token %q appears only once, should be dropped", f)
		}
	}
	if !containsString(features, "모니터암") || !containsString(features, "듀얼") {
		t.Errorf("frequent tokens missing from features: %v", features)
	}
}

func TestMineKeyFeaturesCap(t *testing.T) {
	a := NewFallbackAnalyzer(newTestLogger())

	// 20 distinct repeated tokens — output must cap at 15.
	var products []*models.Product
	for rep := 0; rep < 2; rep++ {
		var sb strings.Builder
		for i := 0; i < 20; i++ {
			sb.WriteString(fmt.Sprintf("토큰%02d ", i))
		}
		products = append(products, &models.Product{Title: sb.String()})
	}

	features := a.mineKeyFeatures(products)
	if len(features) != 15 {
		t.Errorf("expected 15 features, got %d", len(features))
	}
}

func TestFormatWon(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{15000, "15,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := formatWon(tt.in); got != tt.want {
			t.Errorf("formatWon(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
