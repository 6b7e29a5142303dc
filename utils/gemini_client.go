package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

var (
	ErrAINotConfigured  = errors.New("GEMINI_API_KEY is not set")
	ErrAIRateLimited    = errors.New("AI rate limit reached, retry in a minute")
	ErrAIQuotaExhausted = errors.New("AI quota exhausted")
	ErrAIEmptyResponse  = errors.New("AI returned no usable content")
)

// GeminiClient writes listing copy and estimates prices with Gemini.
type GeminiClient struct {
	client    *genai.Client
	model     string
	languages []string
}

// NewGeminiClient creates a client for model. languages are the translation
// targets besides French.
func NewGeminiClient(ctx context.Context, apiKey, model string, languages []string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrAINotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, languages: languages}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GenerateListingContent writes a French title and description for a
// listing, plus their translations.
func (g *GeminiClient) GenerateListingContent(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error) {
	text, err := g.generateJSON(ctx, BuildContentPrompt(req, g.languages))
	if err != nil {
		return nil, err
	}
	return ParseGeneratedContent(text)
}

// EstimatePrice returns a market price estimate in euros.
func (g *GeminiClient) EstimatePrice(ctx context.Context, req models.PriceEstimateRequest) (float64, error) {
	text, err := g.generateJSON(ctx, BuildPricePrompt(req))
	if err != nil {
		return 0, err
	}
	return ParsePriceEstimate(text)
}

func (g *GeminiClient) generateJSON(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", ClassifyAIError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrAIEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrAIEmptyResponse
	}
	return b.String(), nil
}

// ClassifyAIError maps provider errors onto ErrAIQuotaExhausted or
// ErrAIRateLimited. Typed API errors are read by status code and quota
// details; the message is only consulted for untyped errors.
func ClassifyAIError(err error) error {
	if err == nil {
		return nil
	}
	switch limitKind(err) {
	case ErrAIQuotaExhausted:
		return fmt.Errorf("%w: %v", ErrAIQuotaExhausted, err)
	case ErrAIRateLimited:
		return fmt.Errorf("%w: %v", ErrAIRateLimited, err)
	default:
		return fmt.Errorf("AI generation failed: %w", err)
	}
}

func limitKind(err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() != http.StatusTooManyRequests && status.Code(apiErr) != codes.ResourceExhausted {
			return nil
		}
		for _, v := range apiErr.Details().QuotaFailure.GetViolations() {
			if dailyQuota(v.GetQuotaId() + " " + v.GetDescription()) {
				return ErrAIQuotaExhausted
			}
		}
		return ErrAIRateLimited
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code != http.StatusTooManyRequests {
			return nil
		}
		if dailyQuota(gErr.Message + " " + gErr.Body) {
			return ErrAIQuotaExhausted
		}
		return ErrAIRateLimited
	}

	msg := strings.ToLower(err.Error())
	switch {
	case dailyQuota(msg):
		return ErrAIQuotaExhausted
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resourceexhausted"):
		return ErrAIRateLimited
	case strings.Contains(msg, "quota"):
		return ErrAIQuotaExhausted
	}
	return nil
}

// dailyQuota reports whether s names a per-day or billing quota, which does
// not recover within the minute.
func dailyQuota(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "perday") || strings.Contains(s, "per day") ||
		strings.Contains(s, "daily") || strings.Contains(s, "billing")
}

// StripCodeFence removes a ```json ... ``` wrapper around a model answer.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// BuildContentPrompt asks for a JSON object holding the French copy and one
// translation per language.
func BuildContentPrompt(req models.ContentRequest, languages []string) string {
	price := "inconnu"
	if req.Price != nil {
		price = fmt.Sprintf("%.0f €", *req.Price)
	}
	return fmt.Sprintf(`Tu rédiges les annonces d'un concessionnaire automobile français.
À partir de l'annonce source ci-dessous, écris un titre court (marque, modèle, version) et une
description commerciale de 80 à 150 mots, factuelle, sans inventer d'équipement.
Traduis ensuite le titre et la description dans les langues suivantes : %s.

Réponds uniquement avec un objet JSON :
{"title": "...", "description": "...", "translations": {"<code langue>": {"title": "...", "description": "..."}}}

Marque : %s
Prix : %s
Titre source : %s
Description source :
%s
`, strings.Join(languages, ", "), req.Brand, price, req.Title, req.Description)
}

type contentResponse struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Translations map[string]struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"translations"`
}

// ParseGeneratedContent decodes the model answer to BuildContentPrompt.
func ParseGeneratedContent(text string) (*models.GeneratedContent, error) {
	var resp contentResponse
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &resp); err != nil {
		return nil, fmt.Errorf("decode generated content: %w", err)
	}
	if strings.TrimSpace(resp.Title) == "" || strings.TrimSpace(resp.Description) == "" {
		return nil, ErrAIEmptyResponse
	}

	out := &models.GeneratedContent{
		Title:                   strings.TrimSpace(resp.Title),
		Description:             strings.TrimSpace(resp.Description),
		TitleTranslations:       make(map[string]string, len(resp.Translations)),
		DescriptionTranslations: make(map[string]string, len(resp.Translations)),
	}
	for lang, tr := range resp.Translations {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if tr.Title != "" {
			out.TitleTranslations[lang] = strings.TrimSpace(tr.Title)
		}
		if tr.Description != "" {
			out.DescriptionTranslations[lang] = strings.TrimSpace(tr.Description)
		}
	}
	return out, nil
}

// BuildPricePrompt asks for a used-market price estimate.
func BuildPricePrompt(req models.PriceEstimateRequest) string {
	var details []string
	add := func(label, value string) {
		if value != "" {
			details = append(details, label+" : "+value)
		}
	}
	add("Marque", req.Brand)
	add("Modèle", req.Model)
	if req.Year > 0 {
		add("Année", fmt.Sprint(req.Year))
	}
	if req.Mileage > 0 {
		add("Kilométrage", fmt.Sprintf("%d km", req.Mileage))
	}
	add("Énergie", req.Energy)
	add("Catégorie", req.Category)

	return fmt.Sprintf(`Estime le prix de vente en euros de ce véhicule d'occasion sur le marché français.
Réponds uniquement avec un objet JSON {"price": <nombre>}.

%s
`, strings.Join(details, "\n"))
}

// ParsePriceEstimate decodes the model answer to BuildPricePrompt.
func ParsePriceEstimate(text string) (float64, error) {
	var resp struct {
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &resp); err != nil {
		return 0, fmt.Errorf("decode price estimate: %w", err)
	}
	return resp.Price, nil
}
