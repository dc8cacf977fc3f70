package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/dory-api/internal/domain"
)

// candidateSchema accepts both field spellings the model is known to
// emit: question/answer and front/back.
type candidateSchema struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Hint     string   `json:"hint"`
	Tags     []string `json:"tags"`
}

// RepairArrayPayload trims extraneous leading/trailing commentary around
// a JSON array: everything before the first '[' and after the last ']'
// is discarded. This is a deliberately narrow two-step heuristic; more
// aggressive repair risks masking genuinely malformed output. Repairing
// an already-clean array is a no-op.
func RepairArrayPayload(raw string) (string, error) {
	start := strings.Index(raw, "[")
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON array found in response", ErrMalformedResponse)
	}

	end := strings.LastIndex(raw, "]")
	if end < start {
		return "", fmt.Errorf("%w: unterminated JSON array in response", ErrMalformedResponse)
	}

	return raw[start : end+1], nil
}

// ParseCandidates extracts candidate cards from free-form model output.
// A hard parse failure after repair fails the whole run with
// ErrMalformedResponse; per-item validation is the orchestrator's job so
// that cancellation can be observed between items.
func ParseCandidates(raw string) ([]domain.CandidateCard, error) {
	payload, err := RepairArrayPayload(raw)
	if err != nil {
		return nil, err
	}

	var schemas []candidateSchema
	if err := json.Unmarshal([]byte(payload), &schemas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	candidates := make([]domain.CandidateCard, 0, len(schemas))
	for _, s := range schemas {
		front := s.Front
		if front == "" {
			front = s.Question
		}
		back := s.Back
		if back == "" {
			back = s.Answer
		}

		candidates = append(candidates, domain.CandidateCard{
			Front: strings.TrimSpace(front),
			Back:  strings.TrimSpace(back),
			Tags:  s.Tags,
		})
	}

	return candidates, nil
}
