package services

import (
	"fmt"
	"strings"

	"naver-market-research/models"
)

// PrintReport renders the search KPIs and the analysis result as a terminal
// report for the one-shot CLI pipeline.
func PrintReport(keyword string, products []*models.Product, result *models.AnalysisResult) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 시장조사 리포트 — %s\033[0m\n", keyword)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	prices := models.PositivePrices(products)
	fmt.Printf("\033[1;33m  개요\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  상품 수 : \033[1m%d건\033[0m\n", len(products))
	if len(prices) > 0 {
		minP, maxP, sum := prices[0], prices[0], 0
		for _, p := range prices {
			sum += p
			if p < minP {
				minP = p
			}
			if p > maxP {
				maxP = p
			}
		}
		fmt.Printf("  최저가  : \033[1;32m%s원\033[0m\n", formatWon(minP))
		fmt.Printf("  최고가  : \033[1;32m%s원\033[0m\n", formatWon(maxP))
		fmt.Printf("  평균가  : \033[1;32m%s원\033[0m\n", formatWon(sum/len(prices)))
	} else {
		fmt.Printf("  가격 데이터 없음\n")
	}
	fmt.Println()

	// Top listings by search rank
	fmt.Printf("\033[1;33m  상위 상품\033[0m\n")
	fmt.Printf("  %s\n", thin)
	top := products
	if len(top) > 5 {
		top = top[:5]
	}
	for i, p := range top {
		fmt.Printf("  %d. %s — %s원 (%s)\n",
			i+1, Truncate(p.Title, 40), formatWon(p.LPrice), p.BrandOrUnknown())
	}
	fmt.Println()

	// Price segments
	fmt.Printf("\033[1;33m  가격 세그먼트\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(result.PriceSegments) == 0 {
		fmt.Printf("  세그먼트 없음\n")
	}
	for i, seg := range result.PriceSegments {
		fmt.Printf("  \033[1m%d.\033[0m %s — %d건, 평균 %s원 (%s)\n",
			i+1, seg.Range, seg.Count, formatWon(seg.AvgPrice), seg.Characteristics)
		if len(seg.RepresentativeBrands) > 0 {
			fmt.Printf("     대표 브랜드: %s\n", strings.Join(seg.RepresentativeBrands, ", "))
		}
	}
	fmt.Println()

	// Narratives
	fmt.Printf("\033[1;33m  시장 개요\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %s\n\n", result.MarketOverview)

	if result.CompetitiveLandscape != "" {
		fmt.Printf("\033[1;33m  경쟁 구도\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n\n", result.CompetitiveLandscape)
	}

	if len(result.WhiteSpace) > 0 {
		fmt.Printf("\033[1;33m  화이트스페이스\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, ws := range result.WhiteSpace {
			fmt.Printf("  • %s\n", ws)
		}
		fmt.Println()
	}

	if len(result.KeyFeatures) > 0 {
		fmt.Printf("\033[1;33m  주요 키워드\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", strings.Join(result.KeyFeatures, ", "))
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// Truncate shortens a string to max runes, appending an ellipsis.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
