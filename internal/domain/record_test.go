package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetAndGet(t *testing.T) {
	t.Run("zero value is usable", func(t *testing.T) {
		var r Record
		assert.True(t, r.IsEmpty())

		r.Set("doi", "10.1/x")
		v, ok := r.Get("doi")
		require.True(t, ok)
		assert.Equal(t, "10.1/x", v)
	})

	t.Run("keeps insertion order and overwrites in place", func(t *testing.T) {
		r := NewRecord()
		r.Set("doi", "10.1/a")
		r.Set("pmcid", "PMC1")
		r.Set("journal", nil)
		r.Set("doi", "10.1/b")

		assert.Equal(t, []string{"doi", "pmcid", "journal"}, r.Keys())
		assert.Equal(t, "10.1/b", r.String("doi"))
		assert.Equal(t, 3, r.Len())

		v, ok := r.Get("journal")
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("nil record is empty", func(t *testing.T) {
		var r *Record
		assert.True(t, r.IsEmpty())
		assert.Nil(t, r.Keys())
		assert.Empty(t, r.Map())
		_, ok := r.Get("doi")
		assert.False(t, ok)
	})

	t.Run("String ignores non-string values", func(t *testing.T) {
		r := NewRecord()
		r.Set("open", true)
		assert.Equal(t, "", r.String("open"))
		assert.Equal(t, "", r.String("missing"))
	})
}

func TestRecord_JSON(t *testing.T) {
	t.Run("marshal preserves insertion order", func(t *testing.T) {
		r := NewRecord()
		r.Set("url", "http://example.org")
		r.Set("authors", []string{"Doe, J.", "Roe, R."})
		r.Set("open", true)

		data, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, `{"url":"http://example.org","authors":["Doe, J.","Roe, R."],"open":true}`, string(data))
	})

	t.Run("empty record marshals to empty object", func(t *testing.T) {
		data, err := json.Marshal(NewRecord())
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(data))
	})

	t.Run("decode keeps top-level key order", func(t *testing.T) {
		body := []byte(`{"zeta": 1, "alpha": {"nested": [1, "two"]}, "mid": null}`)

		r, err := DecodeRecord(body)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Keys())

		var plain map[string]any
		require.NoError(t, json.Unmarshal(body, &plain))
		assert.Equal(t, plain, r.Map())
	})

	t.Run("decode rejects non-object bodies", func(t *testing.T) {
		_, err := DecodeRecord([]byte(`[1, 2]`))
		assert.Error(t, err)

		_, err = DecodeRecord([]byte(`{"broken": `))
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		r := NewRecord()
		r.Set("doi", "10.1/x")
		r.Set("year", float64(2017))

		data, err := json.Marshal(r)
		require.NoError(t, err)

		back, err := DecodeRecord(data)
		require.NoError(t, err)
		assert.Equal(t, r.Keys(), back.Keys())
		assert.Equal(t, r.Map(), back.Map())
	})
}
