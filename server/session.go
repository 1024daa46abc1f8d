package server

import (
	"sync"
	"time"

	"naver-market-research/models"
)

const historyDisplayLimit = 10

// HistoryEntry is one line of the recent-search list.
type HistoryEntry struct {
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	Time     string `json:"time"`
	Analyzed bool   `json:"analyzed"`
}

// Session is the explicit per-process state of one analyst's interaction
// sequence: search results, analysis results and annotation edits keyed by
// keyword, plus the search history. It is created at startup, passed to every
// handler, and cleared at session end — never a package global.
type Session struct {
	mu sync.Mutex

	searchResults   map[string][]*models.Product
	analysisResults map[string]*models.AnalysisResult
	annotations     models.AnnotationSet
	sessionIDs      map[string]string
	history         []HistoryEntry
}

// NewSession creates session state seeded with previously persisted
// annotations.
func NewSession(annotations models.AnnotationSet) *Session {
	if annotations == nil {
		annotations = models.AnnotationSet{}
	}
	return &Session{
		searchResults:   map[string][]*models.Product{},
		analysisResults: map[string]*models.AnalysisResult{},
		annotations:     annotations,
		sessionIDs:      map[string]string{},
	}
}

// SetSessionID records the persisted store session id for a keyword.
func (s *Session) SetSessionID(keyword, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionIDs[keyword] = id
}

// SessionID returns the persisted store session id for a keyword, if any.
func (s *Session) SessionID(keyword string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionIDs[keyword]
}

// SetSearch records a search run and appends a history entry.
func (s *Session) SetSearch(keyword string, products []*models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults[keyword] = products
	s.history = append(s.history, HistoryEntry{
		Keyword: keyword,
		Count:   len(products),
		Time:    time.Now().Format("15:04"),
	})
}

// Search returns the products of a previous search for the keyword.
func (s *Session) Search(keyword string) ([]*models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products, ok := s.searchResults[keyword]
	return products, ok
}

// Keywords lists the keywords searched so far, oldest first.
func (s *Session) Keywords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var keywords []string
	for _, h := range s.history {
		if !seen[h.Keyword] {
			seen[h.Keyword] = true
			keywords = append(keywords, h.Keyword)
		}
	}
	return keywords
}

// SetAnalysis stores the analysis for a keyword, replacing any previous result.
func (s *Session) SetAnalysis(keyword string, result *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisResults[keyword] = result
}

// Analysis returns the stored analysis for a keyword.
func (s *Session) Analysis(keyword string) (*models.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.analysisResults[keyword]
	return result, ok
}

// Annotations returns a copy of the annotation map for a keyword.
func (s *Session) Annotations(keyword string) map[string]models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]models.Annotation{}
	for pid, ann := range s.annotations.ForKeyword(keyword) {
		out[pid] = ann
	}
	return out
}

// SetAnnotations merges edits into the keyword's annotation map and returns a
// snapshot of the full set for persistence.
func (s *Session) SetAnnotations(keyword string, edits map[string]models.Annotation) models.AnnotationSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.annotations[keyword] == nil {
		s.annotations[keyword] = map[string]models.Annotation{}
	}
	for pid, ann := range edits {
		s.annotations[keyword][pid] = ann
	}
	return s.snapshotLocked()
}

// AnnotationSnapshot returns a deep copy of the whole annotation set.
func (s *Session) AnnotationSnapshot() models.AnnotationSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() models.AnnotationSet {
	snapshot := models.AnnotationSet{}
	for kw, byProduct := range s.annotations {
		snapshot[kw] = map[string]models.Annotation{}
		for pid, ann := range byProduct {
			snapshot[kw][pid] = ann
		}
	}
	return snapshot
}

// History returns at most the 10 most recent searches, newest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.history) - historyDisplayLimit
	if start < 0 {
		start = 0
	}
	recent := s.history[start:]

	out := make([]HistoryEntry, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		entry := recent[i]
		_, entry.Analyzed = s.analysisResults[entry.Keyword]
		out = append(out, entry)
	}
	return out
}

// Clear drops all session state. Annotations are kept on disk, not here.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = map[string][]*models.Product{}
	s.analysisResults = map[string]*models.AnalysisResult{}
	s.sessionIDs = map[string]string{}
	s.history = nil
}
