package entity

import "time"

type ComponentStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type AnalysisResult struct {
	MarkdownReport string          `json:"markdownReport"`
	ComponentStats []ComponentStat `json:"componentStats"`
}

// TotalComponents sums all category counts.
func (r *AnalysisResult) TotalComponents() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, s := range r.ComponentStats {
		total += s.Count
	}
	return total
}

type AnalysisEvent struct {
	SessionID      string    `json:"session_id"`
	State          AppState  `json:"state"`
	MimeType       string    `json:"mime_type"`
	ComponentTotal int       `json:"component_total"`
	Error          string    `json:"error,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

type AnalyzeRequest struct {
	Image string `json:"image" binding:"required"`
}

type SessionResponse struct {
	State  AppState        `json:"state"`
	Error  string          `json:"error,omitempty"`
	Result *AnalysisResult `json:"result,omitempty"`
}
