package domain

// Day is an observation time point label. Only Day1 and Day2 take part in
// change computation; any other label is carried through unchanged.
type Day string

const (
	Day1 Day = "Day 1"
	Day2 Day = "Day 2"
)

// IsComparable reports whether the day is one of the two compared time points
func (d Day) IsComparable() bool {
	return d == Day1 || d == Day2
}

// String implements fmt.Stringer
func (d Day) String() string {
	return string(d)
}

// Observation is one row of the input table
type Observation struct {
	Measure string  `json:"measure" validate:"required"`
	Group   string  `json:"group" validate:"required"`
	Day     Day     `json:"day" validate:"required"`
	Mean    float64 `json:"mean"`
}

// Key identifies the (measure, group, day) combination of an observation
func (o Observation) Key() ObservationKey {
	return ObservationKey{Measure: o.Measure, Group: o.Group, Day: o.Day}
}

// ObservationKey is the expected-unique key of an observation
type ObservationKey struct {
	Measure string
	Group   string
	Day     Day
}

// Selection is the ordered subset of measures and groups currently in view.
// Order determines chart and summary display order.
type Selection struct {
	Measures []string `json:"measures" validate:"dive,required"`
	Groups   []string `json:"groups" validate:"dive,required"`
}

// IsEmpty reports whether either dimension of the selection is empty
func (s Selection) IsEmpty() bool {
	return len(s.Measures) == 0 || len(s.Groups) == 0
}
