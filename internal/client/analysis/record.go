// Package analysis turns the service's heterogeneous analysis payloads into
// one canonical record shape and exposes the submission/history operations
// built on it.
package analysis

import (
	"encoding/json"
	"strconv"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
)

// Record is the canonical analysis record. ID and CreatedAt are always
// populated from the raw payload when present; the remaining fields are
// optional and read as empty strings when the service omitted them.
type Record struct {
	ID                  string
	ResultText          string
	RecommendationsText string
	RemediesText        string
	ImagePath           string
	CreatedAt           string
	Symptoms            string
	AdditionalInfo      string
}

// Normalize maps one raw analysis payload to a Record. It is total over
// object-shaped input: absent optional fields stay empty and never fail the
// mapping. Non-object input fails with common.ErrMalformedRecord.
func Normalize(raw any) (Record, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Record{}, common.ErrMalformedRecord
	}
	return Record{
		ID:                  stringField(m, "id"),
		ResultText:          stringField(m, "result"),
		RecommendationsText: stringField(m, "recommendations"),
		RemediesText:        stringField(m, "remedies"),
		ImagePath:           stringField(m, "file"),
		CreatedAt:           stringField(m, "created_at"),
		Symptoms:            stringField(m, "symptoms"),
		AdditionalInfo:      stringField(m, "additional_info"),
	}, nil
}

// NormalizeList maps a raw history payload to records. The service's
// endpoints do not agree on envelope shape across versions, so three shapes
// are accepted transparently: a bare array, an object wrapping a "results"
// array, and an object with no list at all (read as empty). The function is
// total: any other input also yields an empty list. The second return value
// counts elements that were skipped as malformed.
func NormalizeList(raw any) ([]Record, int) {
	switch v := raw.(type) {
	case []any:
		records := make([]Record, 0, len(v))
		skipped := 0
		for _, item := range v {
			rec, err := Normalize(item)
			if err != nil {
				skipped++
				continue
			}
			records = append(records, rec)
		}
		return records, skipped
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return NormalizeList(results)
		}
		return []Record{}, 0
	default:
		return []Record{}, 0
	}
}

// stringField reads a field as text regardless of how the decoder typed it.
// The service is inconsistent about numeric IDs, so numbers are rendered
// without an exponent or trailing zeros.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
