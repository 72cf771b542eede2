package entity

import "time"

type AppState string

const (
	StateIdle      AppState = "IDLE"
	StateAnalyzing AppState = "ANALYZING"
	StateSuccess   AppState = "SUCCESS"
	StateError     AppState = "ERROR"
)

// CanTransition reports whether the state machine allows moving from s to next.
// Reset to IDLE is always allowed.
func (s AppState) CanTransition(next AppState) bool {
	switch next {
	case StateIdle:
		return true
	case StateAnalyzing:
		return s == StateIdle || s == StateAnalyzing || s == StateSuccess || s == StateError
	case StateSuccess, StateError:
		return s == StateAnalyzing
	}
	return false
}

func (s AppState) Valid() bool {
	switch s {
	case StateIdle, StateAnalyzing, StateSuccess, StateError:
		return true
	}
	return false
}

type Session struct {
	ID         string
	State      AppState
	Image      string // data URL as uploaded
	Preview    string // data URL shown on the page
	MimeType   string
	Result     *AnalysisResult
	Error      string
	Generation uint64
	UpdatedAt  time.Time
}

func NewSession(id string) *Session {
	return &Session{ID: id, State: StateIdle, UpdatedAt: time.Now()}
}

// Clone returns a copy that does not share the stats slice.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Result != nil {
		r := *s.Result
		r.ComponentStats = append([]ComponentStat(nil), s.Result.ComponentStats...)
		c.Result = &r
	}
	return &c
}

// Transition moves the session to next, failing with ErrInvalidTransition
// when the edge does not exist.
func (s *Session) Transition(next AppState) error {
	if !s.State.CanTransition(next) {
		return ErrInvalidTransition
	}
	s.State = next
	s.UpdatedAt = time.Now()
	return nil
}
