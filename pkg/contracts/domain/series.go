package domain

// SeriesPoint is one charted value
type SeriesPoint struct {
	Day   Day     `json:"day"`
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
}

// Series is the ordered sequence of points for one measure
type Series struct {
	Measure string        `json:"measure"`
	Points  []SeriesPoint `json:"points"`
}

// IsEmpty reports whether the series has no points
func (s Series) IsEmpty() bool {
	return len(s.Points) == 0
}

// Days returns the distinct day labels of the series in first-seen order
func (s Series) Days() []Day {
	seen := make(map[Day]struct{}, 2)
	days := make([]Day, 0, 2)
	for _, p := range s.Points {
		if _, ok := seen[p.Day]; ok {
			continue
		}
		seen[p.Day] = struct{}{}
		days = append(days, p.Day)
	}
	return days
}

// Groups returns the distinct groups of the series in first-seen order
func (s Series) Groups() []string {
	seen := make(map[string]struct{})
	groups := make([]string, 0)
	for _, p := range s.Points {
		if _, ok := seen[p.Group]; ok {
			continue
		}
		seen[p.Group] = struct{}{}
		groups = append(groups, p.Group)
	}
	return groups
}
