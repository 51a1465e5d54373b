package access

import (
	_ "embed"
	"fmt"
	"strings"

	"venturelink/pkg/types"

	"gopkg.in/yaml.v3"
)

//go:embed clauses.yaml
var clausesYAML []byte

// Clause is one acknowledgement of the non-disclosure agreement. Heading and
// Body may reference {{pitch_title}} and {{entrepreneur_name}}.
type Clause struct {
	Key     string `yaml:"key"`
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

// AgreementView is the agreement as rendered for one pitch.
type AgreementView struct {
	PitchID          string       `json:"pitchId"`
	PitchTitle       string       `json:"pitchTitle"`
	EntrepreneurName string       `json:"entrepreneurName"`
	Clauses          []ClauseView `json:"clauses"`
}

// ClauseView is a rendered clause. Each carries its own checkbox, named by Key.
type ClauseView struct {
	Key     string `json:"key"`
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// ParseClauses reads an ordered clause list.
func ParseClauses(data []byte) ([]Clause, error) {
	var clauses []Clause
	err := yaml.Unmarshal(data, &clauses)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clauses: %w", err)
	}

	if len(clauses) == 0 {
		return nil, fmt.Errorf("clause list is empty")
	}

	seen := make(map[string]bool, len(clauses))
	for i, c := range clauses {
		if c.Key == "" || strings.TrimSpace(c.Body) == "" {
			return nil, fmt.Errorf("clause %d needs a key and a body", i)
		}
		if !strings.Contains(c.Body, "{{pitch_title}}") || !strings.Contains(c.Body, "{{entrepreneur_name}}") {
			return nil, fmt.Errorf("clause %q must name the pitch and the entrepreneur", c.Key)
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("duplicate clause key %q", c.Key)
		}
		seen[c.Key] = true
	}

	return clauses, nil
}

// DefaultClauses is the embedded agreement.
func DefaultClauses() []Clause {
	clauses, err := ParseClauses(clausesYAML)
	if err != nil {
		panic(err)
	}
	return clauses
}

func render(clauses []Clause, pitch *types.Pitch, entrepreneurName string) AgreementView {
	replacer := strings.NewReplacer(
		"{{pitch_title}}", pitch.Title,
		"{{entrepreneur_name}}", entrepreneurName,
	)

	view := AgreementView{
		PitchID:          pitch.ID,
		PitchTitle:       pitch.Title,
		EntrepreneurName: entrepreneurName,
		Clauses:          make([]ClauseView, len(clauses)),
	}
	for i, c := range clauses {
		view.Clauses[i] = ClauseView{
			Key:     c.Key,
			Heading: replacer.Replace(c.Heading),
			Text:    replacer.Replace(c.Body),
		}
	}

	return view
}
