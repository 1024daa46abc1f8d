package storage

import "naver-market-research/models"

// SessionStore is the interface the primary document store must satisfy:
// create/insert/query operations keyed by opaque session identifiers.
type SessionStore interface {
	SaveSearch(keyword, sortType string, products []*models.Product) (string, error)
	SaveAnalysis(sessionID string, result *models.AnalysisResult) error
	RecentSessions(limit int) ([]models.SearchSession, error)
	SessionProducts(sessionID string) ([]*models.Product, error)
	SessionAnalysis(sessionID string) (*models.AnalysisResult, error)
	Close() error
}

// AnnotationReplicator receives best-effort copies of the annotation set.
// Replication failures are non-fatal to the caller; the local JSON file is
// the durable copy.
type AnnotationReplicator interface {
	ReplicateAnnotations(set models.AnnotationSet) error
}
