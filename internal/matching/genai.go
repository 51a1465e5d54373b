package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venturelink/pkg/types"

	"google.golang.org/genai"
)

const scoringInstruction = `You evaluate startup pitches for an investor.
Given the investor's preferences and one pitch, reply with a JSON object:
matchScore is a number from 0 to 1 for how well the pitch fits,
matchReason is one or two sentences explaining the score.`

var scoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"matchScore":  {Type: genai.TypeNumber},
		"matchReason": {Type: genai.TypeString},
	},
	Required: []string{"matchScore", "matchReason"},
}

// GenAIScorer asks a Gemini model for a structured score.
type GenAIScorer struct {
	client *genai.Client
	model  string
}

func NewGenAIScorer(ctx context.Context, apiKey, model string) (*GenAIScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIScorer{client: client, model: model}, nil
}

func (s *GenAIScorer) Score(ctx context.Context, prefs *types.InvestorPreference, pitch *types.Pitch) (Score, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(scoringInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    scoreSchema,
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(scoringPrompt(prefs, pitch)), config)
	if err != nil {
		return Score{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	return parseScore(resp.Text())
}

func scoringPrompt(prefs *types.InvestorPreference, pitch *types.Pitch) string {
	var b strings.Builder
	b.WriteString("Investor preferences:\n")
	fmt.Fprintf(&b, "- sectors: %s\n", strings.Join(prefs.Sectors, ", "))
	fmt.Fprintf(&b, "- investment range: %s\n", prefs.InvestmentRange)
	fmt.Fprintf(&b, "- risk appetite: %s\n", prefs.RiskAppetite)
	if prefs.Notes != nil && *prefs.Notes != "" {
		fmt.Fprintf(&b, "- notes: %s\n", *prefs.Notes)
	}

	b.WriteString("\nPitch:\n")
	fmt.Fprintf(&b, "- title: %s\n", pitch.Title)
	fmt.Fprintf(&b, "- sector: %s\n", pitch.Sector)
	fmt.Fprintf(&b, "- summary: %s\n", pitch.Summary)
	fmt.Fprintf(&b, "- investment required: %s\n", pitch.InvestmentRequired)
	fmt.Fprintf(&b, "- estimated returns: %s\n", pitch.EstimatedReturns)

	return b.String()
}

func parseScore(text string) (Score, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var score Score
	err := json.Unmarshal([]byte(strings.TrimSpace(text)), &score)
	if err != nil {
		return Score{}, fmt.Errorf("failed to decode score %q: %w", text, err)
	}

	score.MatchScore = clamp(score.MatchScore)
	return score, nil
}
