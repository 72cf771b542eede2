package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ds124wfegd/electrorescue/internal/entity"
)

// ParseResult decodes the model's JSON answer and normalizes the tally:
// categories are trimmed, empty ones dropped, negative counts clamped and
// duplicates merged case-insensitively keeping the first spelling.
func ParseResult(text string) (*entity.AnalysisResult, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return nil, entity.ErrEmptyAnalysis
	}

	var result entity.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("gemini: malformed response: %w", err)
	}

	result.MarkdownReport = strings.TrimSpace(result.MarkdownReport)
	if result.MarkdownReport == "" {
		return nil, entity.ErrEmptyAnalysis
	}

	stats := make([]entity.ComponentStat, 0, len(result.ComponentStats))
	index := make(map[string]int)
	for _, s := range result.ComponentStats {
		name := strings.TrimSpace(s.Category)
		if name == "" {
			continue
		}
		count := s.Count
		if count < 0 {
			count = 0
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			stats[i].Count += count
			continue
		}
		index[key] = len(stats)
		stats = append(stats, entity.ComponentStat{Category: name, Count: count})
	}
	result.ComponentStats = stats

	return &result, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop language tag
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
