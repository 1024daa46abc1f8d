package services

import (
	"regexp"
	"strings"
)

// Feature category labels, in display order.
const (
	LabelSize     = "크기"
	LabelColor    = "색상"
	LabelMaterial = "소재"
	LabelFunction = "기능"
	LabelType     = "유형"
)

var featureLabels = []string{LabelSize, LabelColor, LabelMaterial, LabelFunction, LabelType}

// sizeRegexp matches, in priority order: dimension patterns (1200x600,
// 120*60*72), a bare number with a metric unit (120cm, 1200mm), and an
// inch / form-factor size (27인치, 32형).
var sizeRegexp = regexp.MustCompile(
	`\d{2,4}\s*[xX×*]\s*\d{2,4}(?:\s*[xX×*]\s*\d{2,4})?` +
		`|\d{2,4}\s*(?:mm|cm|m)\b` +
		`|\d{2,3}\s*(?:인치|형)`)

var colorKeywords = []string{
	"화이트", "블랙", "그레이", "아이보리", "우드", "월넛", "오크", "메이플",
	"브라운", "베이지", "네이비", "레드", "블루", "그린", "핑크", "옐로우",
	"실버", "골드", "로즈골드", "차콜", "크림", "라이트그레이", "다크그레이",
	"내추럴", "빈티지", "앤틱", "에쉬", "소노마", "라떼",
}

var materialKeywords = []string{
	"원목", "강화유리", "스틸", "알루미늄", "철제", "메탈",
	"MDF", "PB", "LPM", "HPL", "멜라민", "하이글로시", "포밍",
	"패브릭", "메쉬", "가죽", "인조가죽", "PU", "PVC",
	"대나무", "합판", "집성목", "파티클보드",
}

var functionKeywords = []string{
	"전동", "높낮이조절", "높낮이", "각도조절", "틸팅",
	"모션데스크", "스탠딩", "리프트", "승강",
	"USB", "콘센트", "무선충전", "LED",
	"수납", "서랍", "선반", "거치대",
	"접이식", "이동식", "바퀴", "캐스터",
	"헤드레스트", "팔걸이", "럼버서포트", "풋레스트",
	"인체공학", "듀얼모니터", "모니터암",
	"강화도어", "슬라이딩", "책장", "파티션",
}

var typeKeywords = []string{
	"게이밍", "사무용", "학생용", "컴퓨터", "독서",
	"회의", "좌식", "입식", "코너", "L자", "ㄱ자",
	"1인용", "2인용", "4인용", "6인용",
	"싱글", "슈퍼싱글", "퀸", "킹",
}

// ExtractFeatures matches size, color, material, function and type terms in a
// product title. Categories without a match are omitted from the result.
// Matched vocabulary terms are joined in vocabulary order, not title order.
func ExtractFeatures(title string) map[string]string {
	features := make(map[string]string)

	if m := sizeRegexp.FindString(title); m != "" {
		features[LabelSize] = strings.TrimSpace(m)
	}

	if v := matchKeywords(title, colorKeywords, false); v != "" {
		features[LabelColor] = v
	}
	if v := matchKeywords(title, materialKeywords, true); v != "" {
		features[LabelMaterial] = v
	}
	if v := matchKeywords(title, functionKeywords, false); v != "" {
		features[LabelFunction] = v
	}
	if v := matchKeywords(title, typeKeywords, false); v != "" {
		features[LabelType] = v
	}

	return features
}

// FeatureString renders the extracted features of a title as one line,
// "크기:1200x600 | 색상:화이트", or "-" when nothing matched.
func FeatureString(title string) string {
	features := ExtractFeatures(title)
	if len(features) == 0 {
		return "-"
	}

	var parts []string
	for _, label := range featureLabels {
		if v, ok := features[label]; ok {
			parts = append(parts, label+":"+v)
		}
	}
	return strings.Join(parts, " | ")
}

func matchKeywords(title string, vocab []string, caseInsensitive bool) string {
	haystack := title
	if caseInsensitive {
		haystack = strings.ToLower(title)
	}

	var found []string
	for _, kw := range vocab {
		needle := kw
		if caseInsensitive {
			needle = strings.ToLower(kw)
		}
		if strings.Contains(haystack, needle) {
			found = append(found, kw)
		}
	}
	return strings.Join(found, ", ")
}
