// services/places_client.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PlacesClient proxies place-autocomplete requests to the geocoding
// provider so the provider key never reaches a client.
type PlacesClient struct {
	BaseURL string
	APIKey  string
	Country string
	Client  *http.Client
}

type StructuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

type PlaceSuggestion struct {
	PlaceID              string               `json:"place_id"`
	Description          string               `json:"description"`
	StructuredFormatting StructuredFormatting `json:"structured_formatting"`
}

func NewPlacesClient() *PlacesClient {
	baseURL := os.Getenv("PLACES_API_URL")
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api"
	}
	country := os.Getenv("PLACES_COUNTRY")
	if country == "" {
		country = "in"
	}

	return &PlacesClient{
		BaseURL: baseURL,
		APIKey:  os.Getenv("PLACES_API_KEY"),
		Country: country,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Autocomplete calls the provider's place-autocomplete endpoint,
// restricted to the configured country.
func (p *PlacesClient) Autocomplete(input, sessionToken string) ([]PlaceSuggestion, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("places API key not configured")
	}

	u, err := url.Parse(fmt.Sprintf("%s/place/autocomplete/json", p.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse places URL: %w", err)
	}
	q := u.Query()
	q.Set("input", input)
	q.Set("components", "country:"+p.Country)
	q.Set("sessiontoken", sessionToken)
	q.Set("key", p.APIKey)
	u.RawQuery = q.Encode()

	resp, err := p.Client.Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("Places API returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("places API returned %d", resp.StatusCode)
	}

	var out struct {
		Status      string `json:"status"`
		Predictions []struct {
			PlaceID              string `json:"place_id"`
			Description          string `json:"description"`
			StructuredFormatting struct {
				MainText      string `json:"main_text"`
				SecondaryText string `json:"secondary_text"`
			} `json:"structured_formatting"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if out.Status != "OK" && out.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status %s", out.Status)
	}

	suggestions := make([]PlaceSuggestion, 0, len(out.Predictions))
	for _, pr := range out.Predictions {
		suggestions = append(suggestions, PlaceSuggestion{
			PlaceID:     pr.PlaceID,
			Description: pr.Description,
			StructuredFormatting: StructuredFormatting{
				MainText:      pr.StructuredFormatting.MainText,
				SecondaryText: pr.StructuredFormatting.SecondaryText,
			},
		})
	}
	return suggestions, nil
}

// fallbackSuggestions is served when the provider is unreachable or no
// key is configured, filtered by case-insensitive substring.
var fallbackSuggestions = []PlaceSuggestion{
	{PlaceID: "fallback-mg-road", Description: "MG Road, Bengaluru, Karnataka", StructuredFormatting: StructuredFormatting{MainText: "MG Road", SecondaryText: "Bengaluru, Karnataka"}},
	{PlaceID: "fallback-indiranagar", Description: "Indiranagar, Bengaluru, Karnataka", StructuredFormatting: StructuredFormatting{MainText: "Indiranagar", SecondaryText: "Bengaluru, Karnataka"}},
	{PlaceID: "fallback-koramangala", Description: "Koramangala, Bengaluru, Karnataka", StructuredFormatting: StructuredFormatting{MainText: "Koramangala", SecondaryText: "Bengaluru, Karnataka"}},
	{PlaceID: "fallback-jayanagar", Description: "Jayanagar, Bengaluru, Karnataka", StructuredFormatting: StructuredFormatting{MainText: "Jayanagar", SecondaryText: "Bengaluru, Karnataka"}},
	{PlaceID: "fallback-whitefield", Description: "Whitefield, Bengaluru, Karnataka", StructuredFormatting: StructuredFormatting{MainText: "Whitefield", SecondaryText: "Bengaluru, Karnataka"}},
}

// FilterFallback narrows the fixed fallback list by substring match.
func FilterFallback(input string) []PlaceSuggestion {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return fallbackSuggestions
	}
	var out []PlaceSuggestion
	for _, s := range fallbackSuggestions {
		if strings.Contains(strings.ToLower(s.Description), needle) {
			out = append(out, s)
		}
	}
	return out
}

// HandleAutocomplete is the HTTP surface of the proxy. Provider
// failures degrade to the fallback list rather than erroring, since a
// broken autocomplete box is worse than a short one.
func (p *PlacesClient) HandleAutocomplete(c *fiber.Ctx) error {
	var req struct {
		Input        string `json:"input"`
		SessionToken string `json:"session_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Input) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "input is required"})
	}

	suggestions, err := p.Autocomplete(req.Input, req.SessionToken)
	if err != nil {
		log.Printf("⚠️ [PLACES] Falling back to static suggestions: %v", err)
		suggestions = FilterFallback(req.Input)
	}

	return c.JSON(fiber.Map{"suggestions": suggestions})
}
