// Package chart lays out the component breakdown shown beside the report.
package chart

import "github.com/ds124wfegd/electrorescue/internal/entity"

var palette = []string{"#3b82f6", "#14b8a6", "#8b5cf6", "#f59e0b", "#ef4444", "#10b981", "#ec4899", "#6366f1"}

type Bar struct {
	Category string
	Count    int
	Percent  int // width relative to the largest count, 0..100
	Color    string
}

type Chart struct {
	Bars  []Bar
	Total int
}

// Build keeps input order. A non-zero count always gets a visible bar.
func Build(stats []entity.ComponentStat) Chart {
	var c Chart
	top := 0
	for _, s := range stats {
		c.Total += s.Count
		if s.Count > top {
			top = s.Count
		}
	}

	for i, s := range stats {
		pct := 0
		if top > 0 {
			pct = s.Count * 100 / top
			if pct == 0 && s.Count > 0 {
				pct = 1
			}
		}
		c.Bars = append(c.Bars, Bar{
			Category: s.Category,
			Count:    s.Count,
			Percent:  pct,
			Color:    palette[i%len(palette)],
		})
	}
	return c
}

func (c Chart) Empty() bool {
	return len(c.Bars) == 0
}
