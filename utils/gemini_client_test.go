package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{`  {"a":1}  `, `{"a":1}`},
		{"```json{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripCodeFence(tt.in); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyAIError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"googleapi: Error 429: Resource has been exhausted (e.g. check quota).", ErrAIRateLimited},
		{"rpc error: code = ResourceExhausted desc = 429 Too Many Requests", ErrAIRateLimited},
		{"rate limit exceeded", ErrAIRateLimited},
		{"You exceeded your current quota, please check your plan and billing details", ErrAIQuotaExhausted},
		{"quota exceeded for project", ErrAIQuotaExhausted},
	}
	for _, tt := range tests {
		if got := ClassifyAIError(errors.New(tt.msg)); !errors.Is(got, tt.want) {
			t.Errorf("ClassifyAIError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}

	other := ClassifyAIError(errors.New("invalid argument"))
	if errors.Is(other, ErrAIRateLimited) || errors.Is(other, ErrAIQuotaExhausted) {
		t.Errorf("generic error classified as limit: %v", other)
	}
	if ClassifyAIError(nil) != nil {
		t.Error("ClassifyAIError(nil) != nil")
	}
}

func quotaAPIError(t *testing.T, quotaID string) error {
	t.Helper()
	st, err := status.New(codes.ResourceExhausted, "Resource has been exhausted (e.g. check quota).").
		WithDetails(&errdetails.QuotaFailure{Violations: []*errdetails.QuotaFailure_Violation{{QuotaId: quotaID}}})
	if err != nil {
		t.Fatal(err)
	}
	apiErr, ok := apierror.FromError(st.Err())
	if !ok {
		t.Fatal("apierror.FromError failed")
	}
	return fmt.Errorf("generate content: %w", apiErr)
}

func TestClassifyTypedAIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"per-minute quota", quotaAPIError(t, "GenerateRequestsPerMinutePerProjectPerModel-FreeTier"), ErrAIRateLimited},
		{"per-day quota", quotaAPIError(t, "GenerateRequestsPerDayPerProjectPerModel-FreeTier"), ErrAIQuotaExhausted},
		{"http 429", &googleapi.Error{Code: 429, Message: "Quota exceeded for quota metric 'Generate Content API requests per minute'"}, ErrAIRateLimited},
		{"http 429 daily", &googleapi.Error{Code: 429, Message: "Quota exceeded for quota metric 'Generate requests per day'"}, ErrAIQuotaExhausted},
		{"http 400", &googleapi.Error{Code: 400, Message: "quota project not set"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAIError(tt.err)
			if tt.want == nil {
				if errors.Is(got, ErrAIRateLimited) || errors.Is(got, ErrAIQuotaExhausted) {
					t.Errorf("ClassifyAIError() = %v, want generic failure", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyAIError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGeneratedContent(t *testing.T) {
	text := "```json\n" + `{
  "title": "BMW Série 3 320d M Sport",
  "description": "Berline sportive et sobre.",
  "translations": {
    "EN": {"title": "BMW 3 Series 320d M Sport", "description": "Sporty, frugal saloon."},
    "de": {"title": "BMW 3er 320d M Sport", "description": "Sportliche Limousine."}
  }
}` + "\n```"
	got, err := ParseGeneratedContent(text)
	if err != nil {
		t.Fatalf("ParseGeneratedContent() error = %v", err)
	}
	if got.Title != "BMW Série 3 320d M Sport" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.TitleTranslations["en"] != "BMW 3 Series 320d M Sport" || got.DescriptionTranslations["de"] != "Sportliche Limousine." {
		t.Errorf("translations = %v / %v", got.TitleTranslations, got.DescriptionTranslations)
	}

	if _, err := ParseGeneratedContent(`{"title":"","description":""}`); !errors.Is(err, ErrAIEmptyResponse) {
		t.Errorf("empty content error = %v", err)
	}
}

func TestParsePriceEstimate(t *testing.T) {
	got, err := ParsePriceEstimate("```json\n{\"price\": 18750}\n```")
	if err != nil || got != 18750 {
		t.Fatalf("ParsePriceEstimate() = %v, %v", got, err)
	}
	if _, err := ParsePriceEstimate("about 18k"); err == nil {
		t.Error("expected decode error")
	}
}

func TestBuildPrompts(t *testing.T) {
	price := 24900.0
	p := BuildContentPrompt(models.ContentRequest{Title: "BMW 320d", Brand: "BMW", Price: &price}, []string{"en", "de"})
	for _, want := range []string{"en, de", "BMW 320d", "24900 €"} {
		if !strings.Contains(p, want) {
			t.Errorf("content prompt missing %q", want)
		}
	}

	p = BuildPricePrompt(models.PriceEstimateRequest{Brand: "Kubota", Model: "KX019", Year: 2018})
	if !strings.Contains(p, "Année : 2018") || strings.Contains(p, "Kilométrage") {
		t.Errorf("price prompt = %q", p)
	}
}
