package naver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"naver-market-research/config"
	"naver-market-research/utils"
)

const sampleBody = `{
	"total": 3120,
	"items": [
		{
			"title": "카멜마운트 <b>모니터암</b> 듀얼",
			"link": "https://smartstore.naver.com/item/1",
			"image": "https://shopping-phinf.pstatic.net/1.jpg",
			"lprice": "45900",
			"hprice": "",
			"mallName": "카멜공식스토어",
			"productId": "82345",
			"productType": "1",
			"brand": "카멜마운트",
			"maker": "카멜",
			"category1": "디지털/가전",
			"category2": "주변기기",
			"category3": "모니터주변기기",
			"category4": ""
		},
		{
			"title": "NB <b>모니터</b> 거치대",
			"link": "https://smartstore.naver.com/item/2",
			"image": "https://shopping-phinf.pstatic.net/2.jpg",
			"lprice": "abc",
			"hprice": "52000",
			"mallName": "엔비몰",
			"productId": "99120",
			"productType": "2",
			"brand": "",
			"maker": "",
			"category1": "디지털/가전",
			"category2": "주변기기",
			"category3": "",
			"category4": ""
		}
	]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{NaverClientID: "id", NaverClientSecret: "secret"}
	c := New(cfg, utils.NewLogger())
	c.baseURL = srv.URL
	return c
}

func TestSearchMissingCredentials(t *testing.T) {
	c := New(&config.Config{}, utils.NewLogger())

	_, err := c.Search(context.Background(), "모니터암", 50, "sim")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestSearchNormalizesItems(t *testing.T) {
	var gotQuery, gotDisplay, gotSort string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotDisplay = r.URL.Query().Get("display")
		gotSort = r.URL.Query().Get("sort")
		if r.Header.Get("X-Naver-Client-Id") != "id" {
			t.Errorf("missing client id header")
		}
		w.Write([]byte(sampleBody))
	})

	products, err := c.Search(context.Background(), "모니터암", 150, "dsc")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "모니터암" || gotSort != "dsc" {
		t.Errorf("query params: query=%q sort=%q", gotQuery, gotSort)
	}
	if gotDisplay != "100" {
		t.Errorf("display should clamp to 100, got %q", gotDisplay)
	}

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	p := products[0]
	if p.Title != "카멜마운트 모니터암 듀얼" {
		t.Errorf("title not stripped: %q", p.Title)
	}
	if p.LPrice != 45900 || p.HPrice != 0 {
		t.Errorf("prices: lprice=%d hprice=%d", p.LPrice, p.HPrice)
	}
	if p.ProductID != "82345" || p.Brand != "카멜마운트" {
		t.Errorf("identity fields: %+v", p)
	}

	// Unparseable numeric fields fall back to 0.
	if products[1].LPrice != 0 || products[1].HPrice != 52000 {
		t.Errorf("fallback prices: %+v", products[1])
	}
}

func TestSearchInvalidSortDefaultsToSim(t *testing.T) {
	var gotSort string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSort = r.URL.Query().Get("sort")
		w.Write([]byte(`{"total":0,"items":[]}`))
	})

	if _, err := c.Search(context.Background(), "책상", 10, "price"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotSort != "sim" {
		t.Errorf("sort: got %q, want sim", gotSort)
	}
}

func TestSearchTransportError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage":"Authentication failed","errorCode":"024"}`))
	})

	_, err := c.Search(context.Background(), "모니터암", 50, "sim")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if errors.Is(err, ErrMissingCredentials) {
		t.Error("transport failure must not be a credential error")
	}
	if !strings.Contains(err.Error(), "Authentication failed") {
		t.Errorf("raw error text should surface: %v", err)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>모니터암</b> 거치대", "모니터암 거치대"},
		{"no tags", "no tags"},
		{"<em>강조</em> <b>두번</b>", "강조 두번"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
