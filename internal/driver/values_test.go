package driver

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValues(t *testing.T) {
	at := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	rec := &neo4j.Record{
		Keys: []string{"name", "episodes", "embedding", "created", "local", "text_time", "missing_time", "bad_time"},
		Values: []interface{}{
			"Alice",
			[]interface{}{"ep-1", 7, "ep-2"},
			[]interface{}{0.5, float32(0.25), int64(1)},
			at,
			dbtype.LocalDateTime(at),
			"2024-03-04T05:06:07Z",
			nil,
			"yesterday",
		},
	}

	assert.Equal(t, "Alice", String(rec, "name"))
	assert.Equal(t, "", String(rec, "nope"))
	assert.Equal(t, []string{"ep-1", "ep-2"}, Strings(rec, "episodes"))
	assert.Nil(t, Strings(rec, "nope"))
	assert.Equal(t, []float32{0.5, 0.25, 1}, Float32s(rec, "embedding"))

	got := Time(rec, "created")
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))

	got = Time(rec, "local")
	require.NotNil(t, got)
	assert.Equal(t, at.Hour(), got.Hour())

	got = Time(rec, "text_time")
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))

	assert.Nil(t, Time(rec, "missing_time"))
	assert.Nil(t, Time(rec, "bad_time"))
}
