// Package questions turns raw model output into an interview question list.
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"prepwise/interview/internal/utils"
)

var ErrNoQuestions = errors.New("model returned no questions")

// Parse decodes the model text as a JSON array of strings. A markdown fence
// around the array is tolerated, anything else that is not a string array is
// rejected.
func Parse(text string) ([]string, error) {
	cleaned := utils.StripFences(text)

	var raw []string
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}
