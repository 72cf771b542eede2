package database

import (
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndFind(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	s := entity.NewSession("s1")
	s.Result = &entity.AnalysisResult{
		MarkdownReport: "# ok",
		ComponentStats: []entity.ComponentStat{{Category: "ICs", Count: 1}},
	}
	require.NoError(t, repo.Save(s))

	// mutating the caller's copy must not leak into the repository
	s.State = entity.StateError
	s.Result.ComponentStats[0].Count = 42

	got, err := repo.FindByID("s1")
	require.NoError(t, err)
	assert.Equal(t, entity.StateIdle, got.State)
	assert.Equal(t, 1, got.Result.ComponentStats[0].Count)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	repo := NewSessionRepository(0)
	assert.ErrorIs(t, repo.Save(&entity.Session{}), entity.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Save(nil), entity.ErrSessionNotFound)
}

func TestSweep(t *testing.T) {
	repo := NewSessionRepository(10 * time.Minute)
	now := time.Now()

	old := entity.NewSession("old")
	old.UpdatedAt = now.Add(-time.Hour)
	busy := entity.NewSession("busy")
	busy.State = entity.StateAnalyzing
	busy.UpdatedAt = now.Add(-time.Hour)
	fresh := entity.NewSession("fresh")
	fresh.UpdatedAt = now

	for _, s := range []*entity.Session{old, busy, fresh} {
		require.NoError(t, repo.Save(s))
	}

	assert.Equal(t, 1, repo.Sweep(now))

	_, err := repo.FindByID("old")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	_, err = repo.FindByID("busy")
	assert.NoError(t, err)
	_, err = repo.FindByID("fresh")
	assert.NoError(t, err)
}

func TestSweepDisabled(t *testing.T) {
	repo := NewSessionRepository(0)
	s := entity.NewSession("s1")
	s.UpdatedAt = time.Now().Add(-24 * time.Hour)
	require.NoError(t, repo.Save(s))

	assert.Zero(t, repo.Sweep(time.Now()))
}

func TestConcurrentAccess(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Save(entity.NewSession("shared"))
			_, _ = repo.FindByID("shared")
			repo.Sweep(time.Now())
		}()
	}
	wg.Wait()

	_, err := repo.FindByID("shared")
	assert.NoError(t, err)
}
