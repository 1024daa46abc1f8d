package services

import "testing"

func TestExtractFeaturesSize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"책상 1200x600 화이트", "1200x600"},
		{"서랍장 120*60*72 조립식", "120*60*72"},
		{"선반 1800×800 원목", "1800×800"},
		{"행거 120cm 스탠드", "120cm"},
		{"책상 상판 1200mm", "1200mm"},
		{"모니터 27인치 거치대", "27인치"},
		{"TV 스탠드 55형 호환", "55형"},
		{"사이즈 미표기 책상", ""},
	}

	for _, tt := range tests {
		got := ExtractFeatures(tt.title)[LabelSize]
		if got != tt.want {
			t.Errorf("size of %q = %q; want %q", tt.title, got, tt.want)
		}
	}
}

func TestExtractFeaturesFullExample(t *testing.T) {
	got := ExtractFeatures("책상 1200x600 화이트 원목")

	if got[LabelSize] != "1200x600" {
		t.Errorf("size: got %q, want %q", got[LabelSize], "1200x600")
	}
	if got[LabelColor] != "화이트" {
		t.Errorf("color: got %q, want %q", got[LabelColor], "화이트")
	}
	if got[LabelMaterial] != "원목" {
		t.Errorf("material: got %q, want %q", got[LabelMaterial], "원목")
	}
	if _, ok := got[LabelFunction]; ok {
		t.Errorf("function should be absent, got %q", got[LabelFunction])
	}
}

func TestExtractFeaturesVocabularyOrder(t *testing.T) {
	// 블랙 appears before 화이트 in the title, but output follows the
	// vocabulary list order.
	got := ExtractFeatures("책상 블랙 화이트 투톤")
	if got[LabelColor] != "화이트, 블랙" {
		t.Errorf("color order: got %q, want %q", got[LabelColor], "화이트, 블랙")
	}
}

func TestExtractFeaturesMaterialCaseInsensitive(t *testing.T) {
	got := ExtractFeatures("책상 상판 mdf 소재")
	if got[LabelMaterial] != "MDF" {
		t.Errorf("material: got %q, want %q", got[LabelMaterial], "MDF")
	}
}

func TestFeatureString(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"책상 1200x600 화이트 원목", "크기:1200x600 | 색상:화이트 | 소재:원목"},
		{"아무 특징 없음", "-"},
		{"게이밍 LED 의자", "기능:LED | 유형:게이밍"},
	}
	for _, tt := range tests {
		if got := FeatureString(tt.title); got != tt.want {
			t.Errorf("FeatureString(%q) = %q; want %q", tt.title, got, tt.want)
		}
	}
}
