package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"naver-market-research/config"
	"naver-market-research/models"
	"naver-market-research/utils"
)

const geminiModel = "gemini-2.5-flash-lite"

// MarketAnalyzer runs AI market analysis through Gemini when an API key is
// configured, and delegates to the rule-based FallbackAnalyzer otherwise.
// A malformed AI response is a parse error surfaced to the caller; the
// fallback path is taken only for the missing-credential case.
type MarketAnalyzer struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback *FallbackAnalyzer
	logger   *utils.Logger
}

// NewMarketAnalyzer creates an analyzer. Without a Gemini key the returned
// analyzer is fallback-only and makes no network calls.
func NewMarketAnalyzer(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*MarketAnalyzer, error) {
	a := &MarketAnalyzer{
		fallback: NewFallbackAnalyzer(logger),
		logger:   logger,
	}

	if !cfg.HasGeminiKey() {
		logger.Warn("[ai] GEMINI_API_KEY not set — rule-based fallback analysis only")
		return a, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(4096)

	a.client = client
	a.model = model
	return a, nil
}

// Close releases the underlying API client.
func (a *MarketAnalyzer) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// Analyze produces an AnalysisResult for the keyword. Single request, no
// retries, no streaming; the call blocks until the collaborator responds.
func (a *MarketAnalyzer) Analyze(ctx context.Context, keyword string, products []*models.Product) (*models.AnalysisResult, error) {
	if a.model == nil {
		return a.fallback.Analyze(keyword, products), nil
	}

	prompt := buildAnalysisPrompt(keyword, products)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("ai: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("ai: empty response")
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseAnalysisResponse(keyword, products, text)
}

// promptProduct is the bounded per-listing sample embedded in the prompt.
type promptProduct struct {
	Rank     int    `json:"rank"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Brand    string `json:"brand"`
	Maker    string `json:"maker"`
	Mall     string `json:"mall"`
	Category string `json:"category"`
}

func buildAnalysisPrompt(keyword string, products []*models.Product) string {
	sample := make([]promptProduct, 0, len(products))
	for i, p := range products {
		maker := p.Maker
		if maker == "" {
			maker = "unknown"
		}
		sample = append(sample, promptProduct{
			Rank:     i + 1,
			Title:    p.Title,
			Price:    p.LPrice,
			Brand:    p.BrandOrUnknown(),
			Maker:    maker,
			Mall:     p.MallName,
			Category: p.CategoryPath(),
		})
	}
	productJSON, _ := json.MarshalIndent(sample, "", " ")

	prices := models.PositivePrices(products)
	sort.Ints(prices)
	var minP, maxP, avgP, medP int
	if len(prices) > 0 {
		minP = prices[0]
		maxP = prices[len(prices)-1]
		avgP = sumInts(prices) / len(prices)
		medP = prices[len(prices)/2]
	}

	topBrands := topN(countBrands(products), 10)

	return fmt.Sprintf(`당신은 이커머스 시장 조사 전문 분석가입니다.
네이버 쇼핑에서 "%s" 키워드로 검색한 상위 %d개 상품 데이터를 분석해주세요.

## 데이터 요약
- 검색 키워드: %s
- 상품 수: %d개
- 가격 범위: %s원 ~ %s원
- 평균 가격: %s원
- 중간 가격: %s원
- 주요 브랜드: %s

## 상품 목록
%s

## 분석 요청

아래 JSON 형식으로 분석 결과를 반환하세요. JSON만 반환하고 다른 텍스트는 포함하지 마세요.

{
  "price_segments": [
    {
      "range": "가격대 범위 (예: 1만원~3만원)",
      "count": 해당_가격대_상품수,
      "avg_price": 해당_가격대_평균가,
      "characteristics": "이 가격대 상품의 공통 특징",
      "representative_brands": ["브랜드1", "브랜드2"]
    }
  ],
  "market_overview": "시장 전체 개요 (3-5문장). 가격 분포, 주요 플레이어, 시장 특성 요약",
  "white_space": [
    "시장에서 부족한 영역 1 (구체적으로: 가격대, 기능, 타겟 등)",
    "시장에서 부족한 영역 2",
    "시장에서 부족한 영역 3"
  ],
  "competitive_landscape": "경쟁 구도 분석 (3-5문장). 브랜드 집중도, 가격 경쟁, 차별화 포인트",
  "key_features": ["상품명에서 추출한 주요 특징/기능 키워드 10-15개"]
}

분석 시 고려사항:
1. 가격 세그먼트는 3~5개로 자연스럽게 나누세요 (데이터 분포 기반)
2. white_space는 실제 사업적으로 활용 가능한 인사이트를 제공하세요
3. key_features는 상품명에 자주 등장하는 마케팅/기능 키워드를 추출하세요
4. 모든 텍스트는 한국어로 작성하세요`,
		keyword, len(products), keyword, len(products),
		formatWon(minP), formatWon(maxP), formatWon(avgP), formatWon(medP),
		brandSummary(topBrands), productJSON)
}

// aiAnalysisPayload is the recognized shape of the collaborator's JSON answer.
type aiAnalysisPayload struct {
	PriceSegments        []models.PriceSegment `json:"price_segments"`
	MarketOverview       string                `json:"market_overview"`
	WhiteSpace           []string              `json:"white_space"`
	CompetitiveLandscape string                `json:"competitive_landscape"`
	KeyFeatures          []string              `json:"key_features"`
}

// parseAnalysisResponse decodes the AI answer, tolerating a fenced code block
// around the JSON object. Malformed JSON propagates as an error.
func parseAnalysisResponse(keyword string, products []*models.Product, responseText string) (*models.AnalysisResult, error) {
	content := stripCodeFence(responseText)

	var payload aiAnalysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("ai: parse analysis response: %w", err)
	}

	return &models.AnalysisResult{
		Keyword:              keyword,
		ProductCount:         len(products),
		PriceSegments:        payload.PriceSegments,
		MarketOverview:       payload.MarketOverview,
		WhiteSpace:           payload.WhiteSpace,
		CompetitiveLandscape: payload.CompetitiveLandscape,
		KeyFeatures:          payload.KeyFeatures,
		RawAIResponse:        responseText,
	}, nil
}

// stripCodeFence removes a leading/trailing ``` fence and an optional "json"
// language tag, leaving other text untouched.
func stripCodeFence(s string) string {
	content := strings.TrimSpace(s)
	if strings.HasPrefix(content, "```") {
		if parts := strings.SplitN(content, "```", 3); len(parts) >= 2 {
			content = parts[1]
		}
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSpace(content)
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
