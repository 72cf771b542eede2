package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppState
		want     bool
	}{
		{StateIdle, StateAnalyzing, true},
		{StateIdle, StateSuccess, false},
		{StateIdle, StateError, false},
		{StateAnalyzing, StateSuccess, true},
		{StateAnalyzing, StateError, true},
		{StateAnalyzing, StateAnalyzing, true},
		{StateSuccess, StateAnalyzing, true},
		{StateSuccess, StateError, false},
		{StateError, StateAnalyzing, true},
		{StateError, StateSuccess, false},
		{StateSuccess, StateIdle, true},
		{StateError, StateIdle, true},
		{StateAnalyzing, "BOGUS", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestSessionTransition(t *testing.T) {
	s := NewSession("abc")
	require.Equal(t, StateIdle, s.State)

	assert.ErrorIs(t, s.Transition(StateSuccess), ErrInvalidTransition)
	assert.Equal(t, StateIdle, s.State)

	require.NoError(t, s.Transition(StateAnalyzing))
	require.NoError(t, s.Transition(StateError))
	require.NoError(t, s.Transition(StateIdle))
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := NewSession("abc")
	s.Result = &AnalysisResult{
		MarkdownReport: "# Report",
		ComponentStats: []ComponentStat{{Category: "Resistors", Count: 4}},
	}

	c := s.Clone()
	c.Result.ComponentStats[0].Count = 99
	c.Result.MarkdownReport = "changed"

	assert.Equal(t, 4, s.Result.ComponentStats[0].Count)
	assert.Equal(t, "# Report", s.Result.MarkdownReport)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestTotalComponents(t *testing.T) {
	r := &AnalysisResult{ComponentStats: []ComponentStat{{"ICs", 2}, {"Capacitors", 7}}}
	assert.Equal(t, 9, r.TotalComponents())
	assert.Equal(t, 0, (*AnalysisResult)(nil).TotalComponents())
}
