package server

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"naver-market-research/config"
	"naver-market-research/models"
	"naver-market-research/naver"
	"naver-market-research/services"
	"naver-market-research/storage"
	"naver-market-research/utils"
)

// Handler wires the search client, analyzers and stores behind the HTTP API.
type Handler struct {
	cfg      *config.Config
	session  *Session
	search   *naver.Client
	analyzer *services.MarketAnalyzer
	store    storage.SessionStore
	annStore *storage.AnnotationStore
	logger   *utils.Logger
}

// NewHandler builds the API handler. store may be nil when the document store
// is not reachable; persistence is then skipped.
func NewHandler(cfg *config.Config, session *Session, search *naver.Client,
	analyzer *services.MarketAnalyzer, store storage.SessionStore,
	annStore *storage.AnnotationStore, logger *utils.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		session:  session,
		search:   search,
		analyzer: analyzer,
		store:    store,
		annStore: annStore,
		logger:   logger,
	}
}

// NewRouter registers all routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	api := router.Group("/api")
	{
		api.GET("/status", h.Status)
		api.POST("/search", h.Search)
		api.POST("/analyze", h.Analyze)
		api.GET("/products/:keyword", h.Products)
		api.GET("/annotations/:keyword", h.GetAnnotations)
		api.POST("/annotations/:keyword", h.SaveAnnotations)
		api.POST("/annotations/:keyword/autofill", h.AutoFillAnnotations)
		api.GET("/keywords/:keyword/features", h.FeatureBreakdown)
		api.GET("/compare", h.Compare)
		api.GET("/history", h.History)
		api.GET("/sessions", h.Sessions)
		api.GET("/sessions/:id/products", h.SessionProducts)
		api.GET("/sessions/:id/analysis", h.SessionAnalysis)
		api.DELETE("/session", h.ClearSession)
	}

	return router
}

// Status reports which collaborator credentials are configured, so the client
// can warn about demo/fallback behavior up front.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"naver_configured":  h.cfg.HasNaverCredentials(),
		"gemini_configured": h.cfg.HasGeminiKey(),
		"store_connected":   h.store != nil,
	})
}

type searchRequest struct {
	Keyword string `json:"keyword" binding:"required"`
	Sort    string `json:"sort"`
	Display int    `json:"display"`
}

// Search runs a shopping search, records it in the session and persists the
// search session to the document store.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	if req.Display == 0 {
		req.Display = h.cfg.SearchDisplay
	}
	if req.Sort == "" {
		req.Sort = h.cfg.SearchSort
	}

	products, err := h.search.Search(c.Request.Context(), req.Keyword, req.Display, req.Sort)
	if err != nil {
		if errors.Is(err, naver.ErrMissingCredentials) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.session.SetSearch(req.Keyword, products)

	sessionID := ""
	if h.store != nil {
		id, err := h.store.SaveSearch(req.Keyword, req.Sort, products)
		if err != nil {
			h.logger.Warn("[api] persisting search failed: %v", err)
		} else {
			sessionID = id
			h.session.SetSessionID(req.Keyword, id)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"keyword":    req.Keyword,
		"session_id": sessionID,
		"stats":      priceStats(products),
		"brands":     services.TopBrands(products, 10),
		"products":   products,
	})
}

type analyzeRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// Analyze runs AI (or fallback) market analysis over the keyword's search
// results. Re-running replaces the stored result for the keyword.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	products, ok := h.session.Search(req.Keyword)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "먼저 키워드를 검색해주세요."})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.Keyword, products)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.session.SetAnalysis(req.Keyword, result)

	if h.store != nil {
		if sessionID := h.session.SessionID(req.Keyword); sessionID != "" {
			if err := h.store.SaveAnalysis(sessionID, result); err != nil {
				h.logger.Warn("[api] persisting analysis failed: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, result)
}

// Products renders the product table for a searched keyword: each row carries
// the saved annotation text and the features auto-extracted from the title.
func (h *Handler) Products(c *gin.Context) {
	keyword := c.Param("keyword")
	products, ok := h.session.Search(keyword)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no search results for keyword"})
		return
	}

	annotations := h.session.Annotations(keyword)

	type row struct {
		Rank       int    `json:"rank"`
		Title      string `json:"title"`
		Annotation string `json:"annotation"`
		LPrice     int    `json:"lprice"`
		Brand      string `json:"brand"`
		MallName   string `json:"mall_name"`
		Features   string `json:"features"`
		Category   string `json:"category"`
		CatalogURL string `json:"catalog_url"`
		StoreURL   string `json:"store_url"`
		ProductID  string `json:"product_id"`
		Image      string `json:"image"`
	}

	rows := make([]row, 0, len(products))
	for i, p := range products {
		rows = append(rows, row{
			Rank:       i + 1,
			Title:      p.Title,
			Annotation: annotations[p.ProductID].Features,
			LPrice:     p.LPrice,
			Brand:      p.Brand,
			MallName:   p.MallName,
			Features:   services.FeatureString(p.Title),
			Category:   p.CategoryPath(),
			CatalogURL: "https://search.shopping.naver.com/catalog/" + p.ProductID,
			StoreURL:   p.Link,
			ProductID:  p.ProductID,
			Image:      p.Image,
		})
	}

	c.JSON(http.StatusOK, gin.H{"keyword": keyword, "rows": rows})
}

// GetAnnotations returns the saved annotations of a keyword.
func (h *Handler) GetAnnotations(c *gin.Context) {
	keyword := c.Param("keyword")
	c.JSON(http.StatusOK, gin.H{
		"keyword":     keyword,
		"annotations": h.session.Annotations(keyword),
	})
}

type annotationSaveRequest struct {
	Edits map[string]models.Annotation `json:"edits" binding:"required"`
}

// SaveAnnotations merges the submitted edits, writes the durable local copy
// and replicates to the document store best-effort.
func (h *Handler) SaveAnnotations(c *gin.Context) {
	keyword := c.Param("keyword")

	var req annotationSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "edits map is required"})
		return
	}

	snapshot := h.session.SetAnnotations(keyword, req.Edits)

	if err := h.annStore.Save(snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	replicated := h.annStore.Replicate(snapshot)

	c.JSON(http.StatusOK, gin.H{
		"saved":      len(req.Edits),
		"replicated": replicated,
	})
}

// AutoFillAnnotations derives annotations from product titles for every entry
// that is still empty, then persists like a manual save.
func (h *Handler) AutoFillAnnotations(c *gin.Context) {
	keyword := c.Param("keyword")
	products, ok := h.session.Search(keyword)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no search results for keyword"})
		return
	}

	existing := h.session.Annotations(keyword)
	edits := map[string]models.Annotation{}
	for _, p := range products {
		if !existing[p.ProductID].Empty() {
			continue
		}
		if extracted := services.AutoFillFromTitle(p.Title); extracted != "" {
			edits[p.ProductID] = models.Annotation{Features: extracted, Name: p.Title}
		}
	}

	snapshot := h.session.SetAnnotations(keyword, edits)

	if err := h.annStore.Save(snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	replicated := h.annStore.Replicate(snapshot)

	c.JSON(http.StatusOK, gin.H{
		"filled":     len(edits),
		"replicated": replicated,
	})
}

// FeatureBreakdown groups a keyword's products by parsed annotation key/value
// with per-value price statistics — the segment-comparison view.
func (h *Handler) FeatureBreakdown(c *gin.Context) {
	keyword := c.Param("keyword")
	products, ok := h.session.Search(keyword)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no search results for keyword"})
		return
	}

	annotations := h.session.Annotations(keyword)
	groups := services.GroupByFeature(products, annotations)
	if len(groups) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"keyword": keyword,
			"groups":  groups,
			"message": "파싱된 특징이 없습니다. key:value 형식으로 입력했는지 확인해주세요.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keyword": keyword, "groups": groups})
}

// Compare puts two keywords side by side: KPIs, top brands, brand overlap and
// annotation value frequencies per key.
func (h *Handler) Compare(c *gin.Context) {
	kw1 := c.Query("kw1")
	kw2 := c.Query("kw2")
	if kw1 == "" || kw2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kw1 and kw2 query params are required"})
		return
	}

	products1, ok1 := h.session.Search(kw1)
	products2, ok2 := h.session.Search(kw2)
	if !ok1 || !ok2 {
		c.JSON(http.StatusNotFound, gin.H{"error": "both keywords must be searched first"})
		return
	}

	brands1 := services.TopBrands(products1, 10)
	brands2 := services.TopBrands(products2, 10)

	c.JSON(http.StatusOK, gin.H{
		"keywords": []string{kw1, kw2},
		"stats":    gin.H{kw1: priceStats(products1), kw2: priceStats(products2)},
		"brands":   gin.H{kw1: brands1, kw2: brands2},
		"brand_overlap": brandOverlap(
			services.BrandCounts(products1), services.BrandCounts(products2)),
		"features": gin.H{
			kw1: services.CollectFeatureCounts(products1, h.session.Annotations(kw1)),
			kw2: services.CollectFeatureCounts(products2, h.session.Annotations(kw2)),
		},
	})
}

// History returns the capped recent-search list, newest first.
func (h *Handler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.session.History()})
}

// Sessions lists recently persisted search sessions.
func (h *Handler) Sessions(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	sessions, err := h.store.RecentSessions(20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// SessionProducts reloads the products of a persisted session.
func (h *Handler) SessionProducts(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	products, err := h.store.SessionProducts(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SessionAnalysis reloads the stored analysis of a persisted session.
func (h *Handler) SessionAnalysis(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document store not connected"})
		return
	}
	result, err := h.store.SessionAnalysis(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session has no analysis"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClearSession drops in-memory session state. Persisted data is untouched.
func (h *Handler) ClearSession(c *gin.Context) {
	h.session.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

type stats struct {
	Count    int `json:"count"`
	MinPrice int `json:"min_price"`
	MaxPrice int `json:"max_price"`
	AvgPrice int `json:"avg_price"`
}

func priceStats(products []*models.Product) stats {
	s := stats{Count: len(products)}
	prices := models.PositivePrices(products)
	if len(prices) == 0 {
		return s
	}
	s.MinPrice, s.MaxPrice = prices[0], prices[0]
	sum := 0
	for _, p := range prices {
		sum += p
		if p < s.MinPrice {
			s.MinPrice = p
		}
		if p > s.MaxPrice {
			s.MaxPrice = p
		}
	}
	s.AvgPrice = sum / len(prices)
	return s
}

type overlap struct {
	Common     []string `json:"common"`
	OnlyFirst  []string `json:"only_first"`
	OnlySecond []string `json:"only_second"`
}

func brandOverlap(brands1, brands2 []services.BrandCount) overlap {
	set1 := map[string]bool{}
	for _, b := range brands1 {
		if b.Brand != "unknown" {
			set1[b.Brand] = true
		}
	}
	set2 := map[string]bool{}
	for _, b := range brands2 {
		if b.Brand != "unknown" {
			set2[b.Brand] = true
		}
	}

	var o overlap
	for b := range set1 {
		if set2[b] {
			o.Common = append(o.Common, b)
		} else {
			o.OnlyFirst = append(o.OnlyFirst, b)
		}
	}
	for b := range set2 {
		if !set1[b] {
			o.OnlySecond = append(o.OnlySecond, b)
		}
	}
	sort.Strings(o.Common)
	sort.Strings(o.OnlyFirst)
	sort.Strings(o.OnlySecond)
	return o
}
