package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"naver-market-research/models"
	"naver-market-research/utils"
)

// PostgresStore persists search sessions, their products and analysis results,
// and acts as the replication target for feature annotations.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection, waits for the database to come up, runs
// schema migrations and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres-ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_sessions (
			id            TEXT PRIMARY KEY,
			keyword       TEXT        NOT NULL,
			sort_type     TEXT        NOT NULL DEFAULT 'sim',
			product_count INT         NOT NULL DEFAULT 0,
			min_price     INT         NOT NULL DEFAULT 0,
			max_price     INT         NOT NULL DEFAULT 0,
			avg_price     INT         NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS search_products (
			id               SERIAL PRIMARY KEY,
			session_id       TEXT NOT NULL REFERENCES search_sessions(id) ON DELETE CASCADE,
			rank             INT  NOT NULL,
			title            TEXT NOT NULL,
			link             TEXT NOT NULL DEFAULT '',
			image            TEXT NOT NULL DEFAULT '',
			lprice           INT  NOT NULL DEFAULT 0,
			hprice           INT  NOT NULL DEFAULT 0,
			mall_name        TEXT NOT NULL DEFAULT '',
			naver_product_id TEXT NOT NULL DEFAULT '',
			product_type     TEXT NOT NULL DEFAULT '',
			brand            TEXT NOT NULL DEFAULT '',
			maker            TEXT NOT NULL DEFAULT '',
			category1        TEXT NOT NULL DEFAULT '',
			category2        TEXT NOT NULL DEFAULT '',
			category3        TEXT NOT NULL DEFAULT '',
			category4        TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS market_analyses (
			keyword               TEXT PRIMARY KEY,
			session_id            TEXT NOT NULL REFERENCES search_sessions(id) ON DELETE CASCADE,
			product_count         INT  NOT NULL DEFAULT 0,
			price_segments        TEXT NOT NULL DEFAULT '[]',
			market_overview       TEXT NOT NULL DEFAULT '',
			white_space           TEXT NOT NULL DEFAULT '[]',
			competitive_landscape TEXT NOT NULL DEFAULT '',
			key_features          TEXT NOT NULL DEFAULT '[]',
			raw_ai_response       TEXT,
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS feature_annotations (
			keyword      TEXT NOT NULL,
			product_id   TEXT NOT NULL,
			product_name TEXT NOT NULL DEFAULT '',
			features     TEXT NOT NULL DEFAULT '',
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (keyword, product_id)
		);

		CREATE INDEX IF NOT EXISTS idx_search_sessions_keyword ON search_sessions(keyword);
		CREATE INDEX IF NOT EXISTS idx_search_products_session ON search_products(session_id);
	`)
	return err
}

// SaveSearch stores a search session with summary price stats plus one row per
// product, and returns the opaque session id.
func (s *PostgresStore) SaveSearch(keyword, sortType string, products []*models.Product) (string, error) {
	prices := models.PositivePrices(products)
	var minP, maxP, avgP int
	if len(prices) > 0 {
		minP, maxP = prices[0], prices[0]
		sum := 0
		for _, p := range prices {
			sum += p
			if p < minP {
				minP = p
			}
			if p > maxP {
				maxP = p
			}
		}
		avgP = sum / len(prices)
	}

	sessionID := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO search_sessions (id, keyword, sort_type, product_count, min_price, max_price, avg_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sessionID, keyword, sortType, len(products), minP, maxP, avgP)
	if err != nil {
		return "", fmt.Errorf("postgres: insert session: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := s.insertProductBatch(sessionID, i, products[i:end]); err != nil {
			return "", err
		}
	}

	s.logger.Info("[postgres] session %s — %d products saved for %q", sessionID, len(products), keyword)
	return sessionID, nil
}

func (s *PostgresStore) insertProductBatch(sessionID string, offset int, batch []*models.Product) error {
	const cols = 16
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := 0; j < cols; j++ {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			sessionID, offset+idx+1, p.Title, p.Link, p.Image, p.LPrice, p.HPrice,
			p.MallName, p.ProductID, p.ProductType, p.Brand, p.Maker,
			p.Category1, p.Category2, p.Category3, p.Category4)
	}

	query := fmt.Sprintf(`
		INSERT INTO search_products (
			session_id, rank, title, link, image, lprice, hprice,
			mall_name, naver_product_id, product_type, brand, maker,
			category1, category2, category3, category4
		) VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := s.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert products: %w", err)
	}
	return nil
}

// SaveAnalysis stores an analysis result. Results are keyed by keyword and
// upserted, so re-analyzing a keyword overwrites the stored result.
func (s *PostgresStore) SaveAnalysis(sessionID string, result *models.AnalysisResult) error {
	segments, err := json.Marshal(result.PriceSegments)
	if err != nil {
		return fmt.Errorf("postgres: encode segments: %w", err)
	}
	whiteSpace, err := json.Marshal(result.WhiteSpace)
	if err != nil {
		return fmt.Errorf("postgres: encode white space: %w", err)
	}
	keyFeatures, err := json.Marshal(result.KeyFeatures)
	if err != nil {
		return fmt.Errorf("postgres: encode key features: %w", err)
	}

	var rawResponse sql.NullString
	if result.RawAIResponse != "" {
		rawResponse = sql.NullString{String: result.RawAIResponse, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO market_analyses (
			keyword, session_id, product_count, price_segments, market_overview,
			white_space, competitive_landscape, key_features, raw_ai_response
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (keyword) DO UPDATE SET
			session_id            = EXCLUDED.session_id,
			product_count         = EXCLUDED.product_count,
			price_segments        = EXCLUDED.price_segments,
			market_overview       = EXCLUDED.market_overview,
			white_space           = EXCLUDED.white_space,
			competitive_landscape = EXCLUDED.competitive_landscape,
			key_features          = EXCLUDED.key_features,
			raw_ai_response       = EXCLUDED.raw_ai_response,
			created_at            = NOW()
	`, result.Keyword, sessionID, result.ProductCount, string(segments), result.MarketOverview,
		string(whiteSpace), result.CompetitiveLandscape, string(keyFeatures), rawResponse)
	if err != nil {
		return fmt.Errorf("postgres: upsert analysis: %w", err)
	}
	return nil
}

// RecentSessions returns the most recent search sessions, newest first.
func (s *PostgresStore) RecentSessions(limit int) ([]models.SearchSession, error) {
	rows, err := s.db.Query(`
		SELECT id, keyword, sort_type, product_count, min_price, max_price, avg_price, created_at
		FROM search_sessions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SearchSession
	for rows.Next() {
		var sess models.SearchSession
		var createdAt time.Time
		if err := rows.Scan(&sess.ID, &sess.Keyword, &sess.SortType, &sess.ProductCount,
			&sess.MinPrice, &sess.MaxPrice, &sess.AvgPrice, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scan session: %w", err)
		}
		sess.CreatedAt = createdAt.Format(time.RFC3339)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionProducts returns the products of a session ordered by search rank.
func (s *PostgresStore) SessionProducts(sessionID string) ([]*models.Product, error) {
	rows, err := s.db.Query(`
		SELECT title, link, image, lprice, hprice, mall_name, naver_product_id,
		       product_type, brand, maker, category1, category2, category3, category4
		FROM search_products
		WHERE session_id = $1
		ORDER BY rank
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: session products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.Title, &p.Link, &p.Image, &p.LPrice, &p.HPrice,
			&p.MallName, &p.ProductID, &p.ProductType, &p.Brand, &p.Maker,
			&p.Category1, &p.Category2, &p.Category3, &p.Category4); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SessionAnalysis returns the stored analysis for a session, or nil when the
// session has not been analyzed.
func (s *PostgresStore) SessionAnalysis(sessionID string) (*models.AnalysisResult, error) {
	row := s.db.QueryRow(`
		SELECT keyword, product_count, price_segments, market_overview,
		       white_space, competitive_landscape, key_features, raw_ai_response
		FROM market_analyses
		WHERE session_id = $1
	`, sessionID)

	result := &models.AnalysisResult{}
	var segments, whiteSpace, keyFeatures string
	var rawResponse sql.NullString
	err := row.Scan(&result.Keyword, &result.ProductCount, &segments, &result.MarketOverview,
		&whiteSpace, &result.CompetitiveLandscape, &keyFeatures, &rawResponse)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: session analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(segments), &result.PriceSegments); err != nil {
		return nil, fmt.Errorf("postgres: decode segments: %w", err)
	}
	if err := json.Unmarshal([]byte(whiteSpace), &result.WhiteSpace); err != nil {
		return nil, fmt.Errorf("postgres: decode white space: %w", err)
	}
	if err := json.Unmarshal([]byte(keyFeatures), &result.KeyFeatures); err != nil {
		return nil, fmt.Errorf("postgres: decode key features: %w", err)
	}
	result.RawAIResponse = rawResponse.String
	return result, nil
}

// ReplicateAnnotations upserts every non-empty annotation. Per-entry upserts
// keep concurrent editors from clobbering each other's rows.
func (s *PostgresStore) ReplicateAnnotations(set models.AnnotationSet) error {
	for keyword, byProduct := range set {
		for productID, ann := range byProduct {
			if strings.TrimSpace(ann.Features) == "" {
				continue
			}
			_, err := s.db.Exec(`
				INSERT INTO feature_annotations (keyword, product_id, product_name, features, updated_at)
				VALUES ($1, $2, $3, $4, NOW())
				ON CONFLICT (keyword, product_id) DO UPDATE SET
					product_name = EXCLUDED.product_name,
					features     = EXCLUDED.features,
					updated_at   = NOW()
			`, keyword, productID, ann.Name, ann.Features)
			if err != nil {
				return fmt.Errorf("postgres: replicate annotation: %w", err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
