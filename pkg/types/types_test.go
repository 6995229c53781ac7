package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_KeepsReceivedOrder(t *testing.T) {
	var m Mapping
	err := json.Unmarshal([]byte(`{"Sugar": "4 g", "Energy": "250 kcal", "Fat": null, "Carbohydrate": ""}`), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sugar", "Energy", "Fat", "Carbohydrate"}, m.Names())

	fat, ok := m.Get("Fat")
	assert.True(t, ok)
	assert.Nil(t, fat)

	energy, ok := m.Get("Energy")
	require.True(t, ok)
	assert.Equal(t, "250 kcal", *energy)

	_, ok = m.Get("Protein")
	assert.False(t, ok)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Sugar":"4 g","Energy":"250 kcal","Fat":null,"Carbohydrate":""}`, string(out))

	var again Mapping
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, m, again)
}

func TestMapping_EmptyAndNull(t *testing.T) {
	var empty Mapping
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)

	var null Mapping = Mapping{{Name: "x"}}
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.Nil(t, null)

	out, err := json.Marshal(Mapping(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestMapping_RejectsNonStringValues(t *testing.T) {
	var m Mapping
	assert.Error(t, json.Unmarshal([]byte(`{"Energy": 250}`), &m))
	assert.Error(t, json.Unmarshal([]byte(`["Energy"]`), &m))
}

func TestDecodeResult_Ok(t *testing.T) {
	resp := &UploadResponse{
		Extracted: json.RawMessage(`{"allergens": {"Peanuts": "Yes"}, "nutrition_per_100g": {"Energy": "250 kcal"}}`),
		Preview:   "Ingredients: ...",
	}

	res, err := DecodeResult(resp)
	require.NoError(t, err)

	ok, isOk := res.(*Ok)
	require.True(t, isOk, "expected *Ok, got %T", res)
	assert.Equal(t, Mapping{{Name: "Peanuts", Value: Ptr("Yes")}}, ok.Allergens)
	assert.Equal(t, Mapping{{Name: "Energy", Value: Ptr("250 kcal")}}, ok.Nutrition)
	assert.Equal(t, "Ingredients: ...", ok.Preview)
}

func TestDecodeResult_ServiceError(t *testing.T) {
	tests := []struct {
		name      string
		extracted string
		raw       string
		reason    string
	}{
		{"flag true", `{"error": true, "raw": "model timeout"}`, "model timeout", ""},
		{"flag message", `{"error": "Failed to parse model output", "raw": "Sure! Here is"}`, "Sure! Here is", "Failed to parse model output"},
		{"no raw", `{"error": true}`, "", ""},
		{"raw not a string", `{"error": 1, "raw": {"partial": true}}`, `{"partial": true}`, ""},
		{"flag object", `{"error": {}, "raw": "x"}`, "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeResult(&UploadResponse{Extracted: json.RawMessage(tt.extracted)})
			require.NoError(t, err)

			se, ok := res.(*ServiceError)
			require.True(t, ok, "expected *ServiceError, got %T", res)
			assert.Equal(t, tt.raw, se.Raw)
			assert.Equal(t, tt.reason, se.Reason)
		})
	}
}

func TestDecodeResult_FalsyErrorIsOk(t *testing.T) {
	for _, flag := range []string{`false`, `null`, `""`, `0`, `0.0`} {
		t.Run(flag, func(t *testing.T) {
			res, err := DecodeResult(&UploadResponse{
				Extracted: json.RawMessage(`{"error": ` + flag + `, "allergens": {"Milk": "present"}, "nutrition_per_100g": {}}`),
			})
			require.NoError(t, err)

			ok, isOk := res.(*Ok)
			require.True(t, isOk, "expected *Ok, got %T", res)
			assert.Equal(t, Mapping{{Name: "Milk", Value: Ptr("present")}}, ok.Allergens)
		})
	}
}

func TestDecodeResult_Malformed(t *testing.T) {
	tests := []struct {
		name string
		resp *UploadResponse
	}{
		{"nil envelope", nil},
		{"missing extracted", &UploadResponse{Preview: "x"}},
		{"null extracted", &UploadResponse{Extracted: json.RawMessage(`null`)}},
		{"array extracted", &UploadResponse{Extracted: json.RawMessage(`[1, 2]`)}},
		{"numeric value", &UploadResponse{Extracted: json.RawMessage(`{"allergens": {"Milk": 1}}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResult(tt.resp)
			assert.ErrorIs(t, err, ErrMalformedResult)
		})
	}
}

func TestNewFile(t *testing.T) {
	f, err := NewFile("sample.pdf", []byte("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType)
	assert.Equal(t, 13, f.Size())
	assert.False(t, f.IsZero())

	_, err = NewFile("sample.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewFile("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, ErrNotPDF)

	assert.True(t, File{}.IsZero())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "label.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n"), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "label.pdf", f.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToAny(t *testing.T) {
	v, err := ToAny(&Ok{Allergens: Mapping{{Name: "Milk", Value: nil}}, Nutrition: Mapping{}, Preview: "p"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"allergens":          map[string]any{"Milk": nil},
		"nutrition_per_100g": map[string]any{},
		"preview":            "p",
	}, v)
}
