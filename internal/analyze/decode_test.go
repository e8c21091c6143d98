package analyze

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Oto wynik: {"a":{"b":2}} Pozdrawiam`, `{"a":{"b":2}}`},
		{"no object", "brak danych", "brak danych"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject("```json\n{\"n\": 12.50, \"s\": \"x\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, json.Number("12.50"), obj["n"])
	assert.Equal(t, "x", obj["s"])

	_, err = DecodeObject("I could not find anything")
	assert.Error(t, err)

	_, err = DecodeObject(`{"a": }`)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"nil", nil, "", false},
		{"empty", "   ", "", false},
		{"trimmed", "  biuro@x.pl ", "biuro@x.pl", true},
		{"number", json.Number("48600100200"), "48600100200", true},
		{"float", 12.5, "12.5", true},
		{"bool", true, "true", true},
		{"list", []any{"600 100 200", nil, "", "12 345 67 89"}, "600 100 200, 12 345 67 89", true},
		{"empty list", []any{}, "", false},
		{"object", map[string]any{"street": "ul. Długa 1", "city": "Kraków", "zip": nil}, "Kraków, ul. Długa 1", true},
		{"unsupported", struct{}{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := String(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"Hala A", "Dom B"}, StringList([]any{"Hala A", "", nil, "Dom B"}))
	assert.Equal(t, []string{"Jedna realizacja"}, StringList("Jedna realizacja"))
	assert.Nil(t, StringList(nil))
	assert.Empty(t, StringList([]any{}))
}
