package models

import (
	"encoding/json"
	"testing"
)

func TestAnnotationUnmarshalLegacyString(t *testing.T) {
	// Older files stored the annotation as a bare string; it normalizes to
	// the record form at decode time.
	var set AnnotationSet
	data := []byte(`{
		"모니터암": {
			"p1": "구분:싱글, 형태:폴타입",
			"p2": {"features": "구분:듀얼", "name": "모니터암 듀얼"}
		}
	}`)
	if err := json.Unmarshal(data, &set); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	legacy := set["모니터암"]["p1"]
	if legacy.Features != "구분:싱글, 형태:폴타입" || legacy.Name != "" {
		t.Errorf("legacy entry: %+v", legacy)
	}

	current := set["모니터암"]["p2"]
	if current.Features != "구분:듀얼" || current.Name != "모니터암 듀얼" {
		t.Errorf("record entry: %+v", current)
	}
}

func TestAnnotationEmpty(t *testing.T) {
	if !(Annotation{}).Empty() {
		t.Error("zero annotation should be empty")
	}
	if (Annotation{Features: "구분:싱글"}).Empty() {
		t.Error("annotation with features should not be empty")
	}
}

func TestForKeywordNeverNil(t *testing.T) {
	set := AnnotationSet{}
	if m := set.ForKeyword("없는키워드"); m == nil {
		t.Error("ForKeyword should return an empty map, not nil")
	}
}

func TestCategoryPath(t *testing.T) {
	tests := []struct {
		p    Product
		want string
	}{
		{Product{Category1: "가구", Category2: "책상", Category3: "", Category4: ""}, "가구 > 책상"},
		{Product{Category1: "가구"}, "가구"},
		{Product{}, ""},
	}
	for _, tt := range tests {
		if got := tt.p.CategoryPath(); got != tt.want {
			t.Errorf("CategoryPath() = %q; want %q", got, tt.want)
		}
	}
}

func TestPositivePrices(t *testing.T) {
	products := []*Product{{LPrice: 0}, {LPrice: 1000}, {LPrice: 2000}, {LPrice: 0}}
	got := PositivePrices(products)
	if len(got) != 2 || got[0] != 1000 || got[1] != 2000 {
		t.Errorf("PositivePrices = %v", got)
	}
}
