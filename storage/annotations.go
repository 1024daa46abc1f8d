package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"naver-market-research/models"
	"naver-market-research/utils"
)

// AnnotationStore keeps feature annotations in a local JSON file, the durable
// copy that must always succeed, with an optional best-effort replication
// target. The two writes are separate operations: a local failure surfaces to
// the caller, a replication failure is logged and swallowed.
type AnnotationStore struct {
	path       string
	replicator AnnotationReplicator
	logger     *utils.Logger
}

// NewAnnotationStore creates a store writing to the given file path.
// replicator may be nil when no remote target is configured.
func NewAnnotationStore(path string, replicator AnnotationReplicator, logger *utils.Logger) *AnnotationStore {
	return &AnnotationStore{path: path, replicator: replicator, logger: logger}
}

// Load reads the annotation set from disk. A missing or unreadable file yields
// an empty set. Legacy plain-string entries are normalized to the
// {features, name} record form while decoding.
func (s *AnnotationStore) Load() models.AnnotationSet {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("[annotations] read %s: %v — starting empty", s.path, err)
		}
		return models.AnnotationSet{}
	}

	var set models.AnnotationSet
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warn("[annotations] decode %s: %v — starting empty", s.path, err)
		return models.AnnotationSet{}
	}
	return set
}

// Save writes the annotation set to the local JSON file. This is the durable
// write; its error is the caller's problem.
func (s *AnnotationStore) Save(set models.AnnotationSet) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("annotations: create data dir: %w", err)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("annotations: encode: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("annotations: write %s: %w", s.path, err)
	}
	return nil
}

// Replicate pushes the set to the remote target. Failure is logged and
// reported via the return value but callers treat it as non-fatal — the local
// copy already exists.
func (s *AnnotationStore) Replicate(set models.AnnotationSet) bool {
	if s.replicator == nil {
		return false
	}
	if err := s.replicator.ReplicateAnnotations(set); err != nil {
		s.logger.Warn("[annotations] remote replication failed (local copy saved): %v", err)
		return false
	}
	return true
}
