package driver

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// String returns the string stored under key, or "" when it is missing or not a string.
func String(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

// Strings accepts both []string and the []any lists the driver hands back.
func Strings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	default:
		return nil
	}
}

// Float32s decodes an embedding property.
func Float32s(rec *neo4j.Record, key string) []float32 {
	v, _ := rec.Get(key)
	switch list := v.(type) {
	case []float32:
		return list
	case []float64:
		out := make([]float32, len(list))
		for i, f := range list {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(list))
		for _, item := range list {
			switch f := item.(type) {
			case float64:
				out = append(out, float32(f))
			case float32:
				out = append(out, f)
			case int64:
				out = append(out, float32(f))
			}
		}
		return out
	default:
		return nil
	}
}

// Time decodes temporal properties written either as native DateTime values or
// as RFC 3339 strings. Nil means the property is absent or unreadable.
func Time(rec *neo4j.Record, key string) *time.Time {
	v, _ := rec.Get(key)
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case dbtype.LocalDateTime:
		t = tv.Time()
	case dbtype.Date:
		t = tv.Time()
	case string:
		if tv == "" {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, tv)
		if err != nil {
			return nil
		}
		t = parsed
	default:
		return nil
	}
	return &t
}
