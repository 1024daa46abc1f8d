package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"naver-market-research/config"
	"naver-market-research/models"
	"naver-market-research/naver"
	"naver-market-research/services"
	"naver-market-research/storage"
	"naver-market-research/utils"
)

func main() {
	keyword := flag.String("keyword", "", "검색 키워드 (예: 모니터암)")
	sortMode := flag.String("sort", "", "정렬: sim | date | asc | dsc")
	display := flag.Int("display", 0, "결과 수 (1-100)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()

	if *keyword == "" {
		fmt.Println("사용법: naver-market-research -keyword <검색어> [-sort sim|date|asc|dsc] [-display N]")
		os.Exit(1)
	}
	if *sortMode == "" {
		*sortMode = cfg.SearchSort
	}
	if *display == 0 {
		*display = cfg.SearchDisplay
	}

	logger.Info("=== 네이버 쇼핑 시장조사 시작 — 키워드: %s ===", *keyword)

	ctx := context.Background()

	searchClient := naver.New(cfg, logger)
	products, err := searchClient.Search(ctx, *keyword, *display, *sortMode)
	if err != nil {
		logger.Error("검색 실패: %v", err)
		os.Exit(1)
	}
	if len(products) == 0 {
		logger.Warn("검색 결과가 없습니다.")
		os.Exit(0)
	}

	// CSV export of the raw result set
	exporter, err := storage.NewCSVExporter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("CSV 출력 준비 실패: %v", err)
	} else if err := exporter.ExportProducts(cfg.CSVOutputPath, products); err != nil {
		logger.Error("CSV 저장 실패: %v", err)
	} else {
		logger.Info("상품 %d건 → %s", len(products), cfg.CSVOutputPath)
	}

	// Persist the search session; the pipeline still works without the store.
	var store storage.SessionStore
	var replicator storage.AnnotationReplicator
	pg, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.Warn("PostgreSQL 연결 실패 — 저장 없이 진행합니다: %v", err)
	} else {
		defer pg.Close()
		store = pg
		replicator = pg
	}

	sessionID := ""
	if store != nil {
		sessionID, err = store.SaveSearch(*keyword, *sortMode, products)
		if err != nil {
			logger.Error("검색 세션 저장 실패: %v", err)
		}
	}

	// Auto-fill annotations for products without saved entries, then write the
	// durable local copy and replicate best-effort.
	annStore := storage.NewAnnotationStore(cfg.AnnotationFile, replicator, logger)
	annotations := annStore.Load()
	if annotations[*keyword] == nil {
		annotations[*keyword] = map[string]models.Annotation{}
	}
	filled := 0
	for _, p := range products {
		if !annotations[*keyword][p.ProductID].Empty() {
			continue
		}
		if extracted := services.AutoFillFromTitle(p.Title); extracted != "" {
			annotations[*keyword][p.ProductID] = models.Annotation{Features: extracted, Name: p.Title}
			filled++
		}
	}
	if filled > 0 {
		if err := annStore.Save(annotations); err != nil {
			logger.Error("특징(정리) 저장 실패: %v", err)
		} else {
			logger.Info("특징 자동 입력 %d건 (빈 항목만)", filled)
			annStore.Replicate(annotations)
		}
	}

	annotationCSV := filepath.Join(filepath.Dir(cfg.CSVOutputPath), "feature_annotations.csv")
	if exporter != nil {
		if err := exporter.ExportAnnotations(annotationCSV, annotations); err != nil {
			logger.Error("특징 CSV 저장 실패: %v", err)
		}
	}

	// Market analysis: Gemini when configured, rule-based fallback otherwise.
	analyzer, err := services.NewMarketAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("분석기 초기화 실패: %v", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	result, err := analyzer.Analyze(ctx, *keyword, products)
	if err != nil {
		logger.Error("시장 분석 실패: %v", err)
		os.Exit(1)
	}

	if store != nil && sessionID != "" {
		if err := store.SaveAnalysis(sessionID, result); err != nil {
			logger.Error("분석 결과 저장 실패: %v", err)
		}
	}

	services.PrintReport(*keyword, products, result)
}
