package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutocompleteParsesPredictions(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"input":        q.Get("input"),
			"components":   q.Get("components"),
			"sessiontoken": q.Get("sessiontoken"),
			"key":          q.Get("key"),
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"predictions": []map[string]interface{}{
				{
					"place_id":    "abc123",
					"description": "MG Road, Bengaluru, Karnataka",
					"structured_formatting": map[string]string{
						"main_text":      "MG Road",
						"secondary_text": "Bengaluru, Karnataka",
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := &PlacesClient{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Country: "in",
		Client:  &http.Client{Timeout: time.Second},
	}

	suggestions, err := client.Autocomplete("MG", "session-1")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "abc123", suggestions[0].PlaceID)
	assert.Equal(t, "MG Road", suggestions[0].StructuredFormatting.MainText)
	assert.Equal(t, "Bengaluru, Karnataka", suggestions[0].StructuredFormatting.SecondaryText)

	assert.Equal(t, "MG", gotQuery["input"])
	assert.Equal(t, "country:in", gotQuery["components"])
	assert.Equal(t, "session-1", gotQuery["sessiontoken"])
	assert.Equal(t, "test-key", gotQuery["key"])
}

func TestAutocompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &PlacesClient{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Country: "in",
		Client:  &http.Client{Timeout: time.Second},
	}

	_, err := client.Autocomplete("MG", "session-1")
	assert.Error(t, err)
}

func TestFilterFallback(t *testing.T) {
	out := FilterFallback("mg road")
	require.Len(t, out, 1)
	assert.Equal(t, "MG Road", out[0].StructuredFormatting.MainText)

	assert.Empty(t, FilterFallback("timbuktu"))
	assert.Len(t, FilterFallback(""), len(fallbackSuggestions))
}

func TestHandleAutocompleteFallsBack(t *testing.T) {
	// No API key configured → provider call fails → fallback list.
	client := &PlacesClient{
		BaseURL: "http://localhost:0",
		Country: "in",
		Client:  &http.Client{Timeout: time.Second},
	}

	app := fiber.New()
	app.Post("/places/autocomplete", client.HandleAutocomplete)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/places/autocomplete", "", map[string]string{
		"input":         "kora",
		"session_token": "s1",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Suggestions []PlaceSuggestion `json:"suggestions"`
	}
	decodeBody(t, resp, &out)
	require.Len(t, out.Suggestions, 1)
	assert.Equal(t, "Koramangala", out.Suggestions[0].StructuredFormatting.MainText)

	// Missing input is a client error, not a fallback.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/places/autocomplete", "", map[string]string{
		"input": "  ",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
