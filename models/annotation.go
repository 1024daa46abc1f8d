package models

import "encoding/json"

// Annotation is the user-authored structured text attached to one listing.
// Features is a comma-separated "key:value, key:value" string; Name records the
// product title at the time of editing so exported rows stay readable even
// after the listing drops out of search results.
type Annotation struct {
	Features string `json:"features"`
	Name     string `json:"name"`
}

// Empty reports whether the annotation carries no feature text.
func (a Annotation) Empty() bool {
	return a.Features == ""
}

// UnmarshalJSON accepts both the current {features, name} record and the
// legacy plain-string form, normalizing the latter at the persistence
// boundary so business logic only ever sees the record form.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		a.Features = legacy
		a.Name = ""
		return nil
	}

	type record Annotation
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*a = Annotation(rec)
	return nil
}

// AnnotationSet maps keyword → product ID → annotation.
type AnnotationSet map[string]map[string]Annotation

// ForKeyword returns the annotations saved for a keyword, never nil.
func (s AnnotationSet) ForKeyword(keyword string) map[string]Annotation {
	if m, ok := s[keyword]; ok {
		return m
	}
	return map[string]Annotation{}
}
