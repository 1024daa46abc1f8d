package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"naver-market-research/config"
	"naver-market-research/models"
	"naver-market-research/utils"
)

const searchURL = "https://openapi.naver.com/v1/search/shop.json"

// ErrMissingCredentials means NAVER_CLIENT_ID / NAVER_CLIENT_SECRET are not
// configured. It is a configuration error, distinct from transport failures.
var ErrMissingCredentials = errors.New(
	"NAVER_CLIENT_ID와 NAVER_CLIENT_SECRET이 .env에 설정되어야 합니다")

// tagRegexp strips the <b>…</b> highlighting the search API puts in titles.
var tagRegexp = regexp.MustCompile(`<[^>]+>`)

var validSorts = map[string]bool{"sim": true, "date": true, "asc": true, "dsc": true}

// Client calls the Naver shopping search API.
type Client struct {
	cfg     *config.Config
	http    *http.Client
	baseURL string
	logger  *utils.Logger
}

// New creates a ready-to-use search Client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		cfg:     cfg,
		http:    http.DefaultClient,
		baseURL: searchURL,
		logger:  logger,
	}
}

// item mirrors the raw API record. The API encodes numeric fields as strings.
type item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	LPrice      string `json:"lprice"`
	HPrice      string `json:"hprice"`
	MallName    string `json:"mallName"`
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
	Brand       string `json:"brand"`
	Maker       string `json:"maker"`
	Category1   string `json:"category1"`
	Category2   string `json:"category2"`
	Category3   string `json:"category3"`
	Category4   string `json:"category4"`
}

type searchResponse struct {
	Total int    `json:"total"`
	Items []item `json:"items"`
}

// Search queries the shopping search API and normalizes the result items into
// Products. display is clamped to the API maximum of 100; sort is one of
// sim (relevance), date, asc (price ascending), dsc (price descending).
// The call is single-shot: transport failures surface directly, no retry.
func (c *Client) Search(ctx context.Context, query string, display int, sort string) ([]*models.Product, error) {
	if !c.cfg.HasNaverCredentials() {
		return nil, ErrMissingCredentials
	}

	if display > 100 {
		display = 100
	}
	if display < 1 {
		display = 50
	}
	if !validSorts[sort] {
		sort = "sim"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", "1")
	params.Set("sort", sort)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("naver: build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.cfg.NaverClientID)
	req.Header.Set("X-Naver-Client-Secret", c.cfg.NaverClientSecret)

	c.logger.Debug("[naver] GET %s (display=%d, sort=%s)", c.baseURL, display, sort)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("naver: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver: API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("naver: decode response: %w", err)
	}

	products := make([]*models.Product, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		products = append(products, &models.Product{
			Title:       StripHTML(it.Title),
			Link:        it.Link,
			Image:       it.Image,
			LPrice:      atoiOrZero(it.LPrice),
			HPrice:      atoiOrZero(it.HPrice),
			MallName:    it.MallName,
			ProductID:   it.ProductID,
			ProductType: it.ProductType,
			Brand:       it.Brand,
			Maker:       it.Maker,
			Category1:   it.Category1,
			Category2:   it.Category2,
			Category3:   it.Category3,
			Category4:   it.Category4,
		})
	}

	c.logger.Info("[naver] %q → %d products (total matches: %d)", query, len(products), parsed.Total)
	return products, nil
}

// StripHTML removes markup tags from a title string.
func StripHTML(s string) string {
	return tagRegexp.ReplaceAllString(s, "")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
