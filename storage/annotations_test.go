package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"naver-market-research/models"
	"naver-market-research/utils"
)

type fakeReplicator struct {
	calls int
	err   error
}

func (f *fakeReplicator) ReplicateAnnotations(set models.AnnotationSet) error {
	f.calls++
	return f.err
}

func sampleSet() models.AnnotationSet {
	return models.AnnotationSet{
		"모니터암": {
			"p1": {Features: "구분:듀얼, 형태:폴타입", Name: "모니터암 듀얼"},
		},
	}
}

func TestAnnotationStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "feature_edits.json")
	store := NewAnnotationStore(path, nil, utils.NewLogger())

	if err := store.Save(sampleSet()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := store.Load()
	ann := got["모니터암"]["p1"]
	if ann.Features != "구분:듀얼, 형태:폴타입" || ann.Name != "모니터암 듀얼" {
		t.Errorf("round trip: %+v", ann)
	}
}

func TestAnnotationStoreLoadMissingFile(t *testing.T) {
	store := NewAnnotationStore(filepath.Join(t.TempDir(), "nope.json"), nil, utils.NewLogger())
	if got := store.Load(); len(got) != 0 {
		t.Errorf("missing file should load empty set, got %v", got)
	}
}

func TestAnnotationStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewAnnotationStore(path, nil, utils.NewLogger())
	if got := store.Load(); len(got) != 0 {
		t.Errorf("corrupt file should load empty set, got %v", got)
	}
}

func TestAnnotationStoreLoadNormalizesLegacy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `{"모니터암": {"p1": "구분:싱글"}}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	store := NewAnnotationStore(path, nil, utils.NewLogger())
	got := store.Load()
	if got["모니터암"]["p1"].Features != "구분:싱글" {
		t.Errorf("legacy normalization: %+v", got)
	}
}

func TestReplicateSwallowsFailure(t *testing.T) {
	rep := &fakeReplicator{err: errors.New("connection refused")}
	store := NewAnnotationStore(filepath.Join(t.TempDir(), "x.json"), rep, utils.NewLogger())

	if ok := store.Replicate(sampleSet()); ok {
		t.Error("failed replication should report false")
	}
	if rep.calls != 1 {
		t.Errorf("replicator calls: got %d, want 1", rep.calls)
	}
}

func TestReplicateWithoutTarget(t *testing.T) {
	store := NewAnnotationStore(filepath.Join(t.TempDir(), "x.json"), nil, utils.NewLogger())
	if ok := store.Replicate(sampleSet()); ok {
		t.Error("replication without a target should report false")
	}
}

func TestReplicateSuccess(t *testing.T) {
	rep := &fakeReplicator{}
	store := NewAnnotationStore(filepath.Join(t.TempDir(), "x.json"), rep, utils.NewLogger())
	if ok := store.Replicate(sampleSet()); !ok {
		t.Error("successful replication should report true")
	}
}

func TestCSVExportAnnotations(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewCSVExporter(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatal(err)
	}

	set := sampleSet()
	set["모니터암"]["p2"] = models.Annotation{Features: "", Name: "빈 항목"}

	path := filepath.Join(dir, "annotations.csv")
	if err := exporter.ExportAnnotations(path, set); err != nil {
		t.Fatalf("ExportAnnotations failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "구분:듀얼") {
		t.Errorf("exported CSV missing features row: %s", content)
	}
	if strings.Contains(content, "빈 항목") {
		t.Errorf("empty annotations must be skipped: %s", content)
	}
}
