package main

import (
	"context"
	"os"

	"naver-market-research/config"
	"naver-market-research/naver"
	"naver-market-research/server"
	"naver-market-research/services"
	"naver-market-research/storage"
	"naver-market-research/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== 시장조사 API 서버 시작 ===")
	if !cfg.HasNaverCredentials() {
		logger.Warn("네이버 검색 API 미설정 — 검색 요청은 실패합니다")
	}
	if !cfg.HasGeminiKey() {
		logger.Warn("Gemini API 미설정 — 규칙 기반 분석만 제공됩니다")
	}

	ctx := context.Background()

	analyzer, err := services.NewMarketAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Error("분석기 초기화 실패: %v", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	// The document store is optional: without it the API runs with in-memory
	// session state and the local annotation file only.
	var store storage.SessionStore
	var replicator storage.AnnotationReplicator
	pg, err := storage.NewPostgresStore(cfg.DSN(), logger)
	if err != nil {
		logger.Warn("PostgreSQL 연결 실패 — 세션 저장 없이 실행합니다: %v", err)
	} else {
		defer pg.Close()
		store = pg
		replicator = pg
	}

	annStore := storage.NewAnnotationStore(cfg.AnnotationFile, replicator, logger)
	session := server.NewSession(annStore.Load())

	handler := server.NewHandler(cfg, session, naver.New(cfg, logger), analyzer, store, annStore, logger)
	router := server.NewRouter(handler)

	logger.Info("listening on :%s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
