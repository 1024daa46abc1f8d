package server

import (
	"fmt"
	"testing"

	"naver-market-research/models"
)

func TestHistoryCapAndOrder(t *testing.T) {
	s := NewSession(nil)
	for i := 1; i <= 15; i++ {
		s.SetSearch(fmt.Sprintf("키워드%02d", i), []*models.Product{{Title: "x"}})
	}

	history := s.History()
	if len(history) != 10 {
		t.Fatalf("history should cap at 10, got %d", len(history))
	}
	if history[0].Keyword != "키워드15" {
		t.Errorf("newest first: got %q", history[0].Keyword)
	}
	if history[9].Keyword != "키워드06" {
		t.Errorf("oldest shown: got %q", history[9].Keyword)
	}
}

func TestHistoryMarksAnalyzed(t *testing.T) {
	s := NewSession(nil)
	s.SetSearch("모니터암", nil)
	s.SetSearch("책상", nil)
	s.SetAnalysis("모니터암", &models.AnalysisResult{Keyword: "모니터암"})

	for _, h := range s.History() {
		if h.Keyword == "모니터암" && !h.Analyzed {
			t.Error("analyzed keyword not flagged")
		}
		if h.Keyword == "책상" && h.Analyzed {
			t.Error("unanalyzed keyword flagged")
		}
	}
}

func TestAnalysisOverwrite(t *testing.T) {
	s := NewSession(nil)
	s.SetAnalysis("모니터암", &models.AnalysisResult{MarketOverview: "첫번째"})
	s.SetAnalysis("모니터암", &models.AnalysisResult{MarketOverview: "두번째"})

	r, ok := s.Analysis("모니터암")
	if !ok {
		t.Fatal("analysis missing")
	}
	if r.MarketOverview != "두번째" {
		t.Errorf("re-analysis must overwrite, got %q", r.MarketOverview)
	}
}

func TestAnnotationSnapshotIsDeepCopy(t *testing.T) {
	s := NewSession(nil)
	s.SetAnnotations("모니터암", map[string]models.Annotation{
		"p1": {Features: "구분:싱글"},
	})

	snapshot := s.AnnotationSnapshot()
	snapshot["모니터암"]["p1"] = models.Annotation{Features: "변조됨"}

	if got := s.Annotations("모니터암")["p1"].Features; got != "구분:싱글" {
		t.Errorf("session state mutated through snapshot: %q", got)
	}
}

func TestSetAnnotationsMerges(t *testing.T) {
	s := NewSession(models.AnnotationSet{
		"모니터암": {"p1": {Features: "구분:싱글"}},
	})
	s.SetAnnotations("모니터암", map[string]models.Annotation{
		"p2": {Features: "구분:듀얼"},
	})

	anns := s.Annotations("모니터암")
	if len(anns) != 2 {
		t.Errorf("expected merged map of 2, got %d", len(anns))
	}
}

func TestClear(t *testing.T) {
	s := NewSession(nil)
	s.SetSearch("모니터암", []*models.Product{{Title: "x"}})
	s.SetAnalysis("모니터암", &models.AnalysisResult{})
	s.SetSessionID("모니터암", "abc")
	s.Clear()

	if _, ok := s.Search("모니터암"); ok {
		t.Error("search results should be cleared")
	}
	if _, ok := s.Analysis("모니터암"); ok {
		t.Error("analysis results should be cleared")
	}
	if s.SessionID("모니터암") != "" {
		t.Error("session ids should be cleared")
	}
	if len(s.History()) != 0 {
		t.Error("history should be cleared")
	}
}

func TestKeywordsDeduplicated(t *testing.T) {
	s := NewSession(nil)
	s.SetSearch("모니터암", nil)
	s.SetSearch("책상", nil)
	s.SetSearch("모니터암", nil)

	keywords := s.Keywords()
	if len(keywords) != 2 {
		t.Errorf("expected 2 distinct keywords, got %v", keywords)
	}
}
