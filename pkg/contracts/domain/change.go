package domain

import (
	"encoding/json"
)

// PercentChange is a day-over-day relative change. An undefined change
// (zero Day 1 baseline) has Defined == false and Value == 0.
type PercentChange struct {
	Value   float64
	Defined bool
}

// Percent returns a defined percent change
func Percent(v float64) PercentChange {
	return PercentChange{Value: v, Defined: true}
}

// UndefinedChange is the divide-by-zero sentinel
var UndefinedChange = PercentChange{}

// MarshalJSON encodes an undefined change as null
func (p PercentChange) MarshalJSON() ([]byte, error) {
	if !p.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON decodes null as the undefined sentinel
func (p *PercentChange) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = UndefinedChange
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// ChangeRecord is the Day 1 to Day 2 comparison for one (group, measure) pair
type ChangeRecord struct {
	Group         string        `json:"group"`
	Measure       string        `json:"measure"`
	Day1Mean      float64       `json:"day1_mean"`
	Day2Mean      float64       `json:"day2_mean"`
	PercentChange PercentChange `json:"percent_change"`
}

// ChangeEntry is one slot of a group summary: either a record or the reason
// it could not be computed.
type ChangeEntry struct {
	Measure string        `json:"measure"`
	Record  *ChangeRecord `json:"record,omitempty"`
	Err     error         `json:"-"`
}

// OK reports whether the entry holds a computed record
func (e ChangeEntry) OK() bool {
	return e.Err == nil && e.Record != nil
}

// GroupSummary holds the change entries of one group in measure selection order
type GroupSummary struct {
	Group   string        `json:"group"`
	Entries []ChangeEntry `json:"entries"`
}
