package chart

import (
	"testing"

	"github.com/ds124wfegd/electrorescue/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	c := Build([]entity.ComponentStat{
		{Category: "Resistors", Count: 40},
		{Category: "Capacitors", Count: 20},
		{Category: "ICs", Count: 0},
		{Category: "Diodes", Count: 0},
	})

	require.Len(t, c.Bars, 4)
	assert.Equal(t, 60, c.Total)
	assert.False(t, c.Empty())

	assert.Equal(t, "Resistors", c.Bars[0].Category)
	assert.Equal(t, 100, c.Bars[0].Percent)
	assert.Equal(t, 50, c.Bars[1].Percent)
	assert.Equal(t, 0, c.Bars[2].Percent)
	assert.Equal(t, palette[0], c.Bars[0].Color)
	assert.Equal(t, palette[1], c.Bars[1].Color)
}

func TestBuildTinyCountStillVisible(t *testing.T) {
	c := Build([]entity.ComponentStat{
		{Category: "Resistors", Count: 500},
		{Category: "Fuses", Count: 1},
	})
	assert.Equal(t, 1, c.Bars[1].Percent)
}

func TestBuildPaletteWraps(t *testing.T) {
	stats := make([]entity.ComponentStat, len(palette)+1)
	for i := range stats {
		stats[i] = entity.ComponentStat{Category: "c", Count: 1}
	}
	c := Build(stats)
	assert.Equal(t, c.Bars[0].Color, c.Bars[len(palette)].Color)
}

func TestBuildEmpty(t *testing.T) {
	c := Build(nil)
	assert.True(t, c.Empty())
	assert.Zero(t, c.Total)
}
