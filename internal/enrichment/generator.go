// Package enrichment turns persisted safety scores into short natural
// language narratives. Generation runs asynchronously behind the work
// queue so the scoring path never waits on the model.
package enrichment

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"homesafe_backend/internal/enrichment/repository"
	prepo "homesafe_backend/internal/properties/repository"
	rrepo "homesafe_backend/internal/reviews/repository"
	"homesafe_backend/platform/apperr"
	"homesafe_backend/platform/config"
)

// fallbackSummary is served when the model returns an empty candidate. It
// must stay safe to show to end users verbatim.
const fallbackSummary = "A detailed safety summary for this property is not available yet. " +
	"The overall score combines recent incident history, guest reviews and local environment data."

// maxPromptReviews bounds how many recent review comments the prompt carries.
const maxPromptReviews = 5

// TextGenerator is the narrative-generation capability.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator generates narratives with a Gemini model.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg config.EnrichmentConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "create genai client", err)
	}
	return &GeminiGenerator{client: client, model: cfg.GetGeminiModel()}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "generate narrative", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fallbackSummary, nil
	}
	return text, nil
}

// BuildPrompt renders the prompt contract: the score snapshot from the job
// payload, the property's descriptive fields, and up to five recent review
// comments. The model is asked for short renter-facing markdown.
func BuildPrompt(prop *prepo.Property, payload repository.Payload, reviews []rrepo.Review) string {
	var b strings.Builder

	b.WriteString("You are a housing safety assistant. Write a concise safety summary ")
	b.WriteString("for a rental property listing, in markdown, at most three short paragraphs. ")
	b.WriteString("Be factual and neutral; do not invent details beyond the data below.\n\n")

	fmt.Fprintf(&b, "Property: %s\n", prop.Name)
	if addr := formatAddress(prop); addr != "" {
		fmt.Fprintf(&b, "Location: %s\n", addr)
	}
	fmt.Fprintf(&b, "Overall safety score: %.1f / 10\n", payload.OverallScore)
	fmt.Fprintf(&b, "Crime score: %.1f / 10 (higher is safer)\n", payload.CrimeScore)
	fmt.Fprintf(&b, "Guest review score: %.1f / 10\n", payload.UserScore)
	fmt.Fprintf(&b, "Environment score: %.1f / 10 (amenities, noise, flood risk)\n", payload.EnvScore)

	comments := reviewComments(reviews)
	if len(comments) > 0 {
		b.WriteString("\nRecent guest comments:\n")
		for _, c := range comments {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	return b.String()
}

func formatAddress(prop *prepo.Property) string {
	parts := make([]string, 0, 4)
	for _, p := range []*string{prop.AddressDetails, prop.Ward, prop.District, prop.City} {
		if p == nil {
			continue
		}
		if s := strings.TrimSpace(*p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func reviewComments(reviews []rrepo.Review) []string {
	comments := make([]string, 0, maxPromptReviews)
	for _, rv := range reviews {
		c := strings.TrimSpace(rv.Comment)
		if c == "" {
			continue
		}
		comments = append(comments, c)
		if len(comments) == maxPromptReviews {
			break
		}
	}
	return comments
}
