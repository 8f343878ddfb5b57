package dataprocessing

import (
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Filter keeps the observations whose measure and group are both selected,
// in their original order. An empty dimension yields an empty result.
func Filter(observations []domain.Observation, sel domain.Selection) []domain.Observation {
	out := make([]domain.Observation, 0)
	if sel.IsEmpty() {
		return out
	}

	measures := toSet(sel.Measures)
	groups := toSet(sel.Groups)
	for _, o := range observations {
		if _, ok := measures[o.Measure]; !ok {
			continue
		}
		if _, ok := groups[o.Group]; !ok {
			continue
		}
		out = append(out, o)
	}
	return out
}
