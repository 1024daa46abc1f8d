package services

import (
	"regexp"
	"strings"
)

// FeaturePairs is an ordered key→value mapping parsed from annotation text.
// Keys keep their first-seen position; duplicate keys overwrite the value.
type FeaturePairs struct {
	keys   []string
	values map[string]string
}

// ParseAnnotation parses a free-text "key:value, key:value" annotation string.
// Parts are split on commas and on the first colon only; both sides are
// trimmed, pairs with an empty key or value are dropped, and the last
// occurrence of a duplicate key wins. Every place annotation text is
// interpreted goes through this one parser so the same input always yields
// the same mapping.
func ParseAnnotation(text string) *FeaturePairs {
	fp := &FeaturePairs{values: make(map[string]string)}

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" || val == "" {
			continue
		}
		if _, seen := fp.values[key]; !seen {
			fp.keys = append(fp.keys, key)
		}
		fp.values[key] = val
	}

	return fp
}

// Len returns the number of parsed pairs.
func (f *FeaturePairs) Len() int { return len(f.keys) }

// Keys returns the keys in first-seen order.
func (f *FeaturePairs) Keys() []string { return f.keys }

// Get returns the value for a key.
func (f *FeaturePairs) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Map returns the pairs as a plain map.
func (f *FeaturePairs) Map() map[string]string {
	m := make(map[string]string, len(f.values))
	for k, v := range f.values {
		m[k] = v
	}
	return m
}

// Auto-fill field labels, in output order.
const (
	labelMultiplicity = "구분"
	labelForm         = "형태"
	labelWeight       = "지탱무게"
)

var weightRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kg`)

// AutoFillFromTitle derives a best-effort annotation string from a product
// title, for the auto-fill operation that populates empty annotation cells.
// Detection rules are a small fixed decision list, distinct from the richer
// title feature extractor: multiplicity (싱글 > 듀얼/더블 > 트리플), mount form
// (폴타입 > 스탠드형 > 클램프형 > 벽걸이형, where 폴 alone also needs 모니터 in
// the title), and a supported-weight figure in kg. Undetected fields are
// omitted; the detected pairs are joined as "label:value, label:value".
func AutoFillFromTitle(title string) string {
	var parts []string
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "싱글"):
		parts = append(parts, labelMultiplicity+":싱글")
	case strings.Contains(t, "듀얼") || strings.Contains(t, "더블"):
		parts = append(parts, labelMultiplicity+":듀얼")
	case strings.Contains(t, "트리플"):
		parts = append(parts, labelMultiplicity+":트리플")
	}

	switch {
	case strings.Contains(t, "폴타입") || (strings.Contains(t, "폴") && strings.Contains(t, "모니터")):
		parts = append(parts, labelForm+":폴타입")
	case strings.Contains(t, "스탠드") || strings.Contains(t, "스탠다드"):
		parts = append(parts, labelForm+":스탠드형")
	case strings.Contains(t, "클램프"):
		parts = append(parts, labelForm+":클램프형")
	case strings.Contains(t, "벽걸이") || strings.Contains(t, "월마운트"):
		parts = append(parts, labelForm+":벽걸이형")
	}

	if m := weightRegexp.FindStringSubmatch(t); m != nil {
		parts = append(parts, labelWeight+":"+m[1]+"kg")
	}

	return strings.Join(parts, ", ")
}
