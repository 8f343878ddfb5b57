package dataprocessing

import (
	"context"
	"log/slog"

	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

// PercentChangeOf returns ((day2 - day1) / day1) * 100, or the undefined
// sentinel when day1 is zero
func PercentChangeOf(day1, day2 float64) domain.PercentChange {
	if day1 == 0 {
		return domain.UndefinedChange
	}
	return domain.Percent(((day2 - day1) / day1) * 100)
}

func firstMean(filtered []domain.Observation, group, measure string, day domain.Day) (float64, bool) {
	for _, o := range filtered {
		if o.Group == group && o.Day == day && o.Measure == measure {
			return o.Mean, true
		}
	}
	return 0, false
}

// Summarize computes the change record of one (group, measure) pair from the
// first Day 1 and first Day 2 match. A missing day yields *MissingDataError.
func Summarize(filtered []domain.Observation, group, measure string) (domain.ChangeRecord, error) {
	d1, ok := firstMean(filtered, group, measure, domain.Day1)
	if !ok {
		return domain.ChangeRecord{}, &MissingDataError{Group: group, Measure: measure, Day: domain.Day1}
	}
	d2, ok := firstMean(filtered, group, measure, domain.Day2)
	if !ok {
		return domain.ChangeRecord{}, &MissingDataError{Group: group, Measure: measure, Day: domain.Day2}
	}

	return domain.ChangeRecord{
		Group:         group,
		Measure:       measure,
		Day1Mean:      d1,
		Day2Mean:      d2,
		PercentChange: PercentChangeOf(d1, d2),
	}, nil
}

// SummaryObserver receives per-pair outcomes, typically to record metrics
type SummaryObserver interface {
	ObserveSummary(ctx context.Context, pairs, missing, undefined int)
}

// ChangeSummarizer runs Summarize over every selected (group, measure) pair
type ChangeSummarizer struct {
	logger   *slog.Logger
	observer SummaryObserver
}

// NewChangeSummarizer creates a summarizer. A nil logger uses slog.Default().
func NewChangeSummarizer(logger *slog.Logger) *ChangeSummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeSummarizer{logger: logger}
}

// WithObserver sets the summary observer
func (s *ChangeSummarizer) WithObserver(o SummaryObserver) *ChangeSummarizer {
	s.observer = o
	return s
}

// SummarizeAll iterates groups in selection order and, within each group,
// measures in selection order. A missing pair is kept as an entry carrying
// its error; it never stops the pass.
func (s *ChangeSummarizer) SummarizeAll(ctx context.Context, filtered []domain.Observation, sel domain.Selection) []domain.GroupSummary {
	summaries := make([]domain.GroupSummary, 0, len(sel.Groups))
	var pairs, missing, undefined int

	for _, group := range sel.Groups {
		gs := domain.GroupSummary{Group: group, Entries: make([]domain.ChangeEntry, 0, len(sel.Measures))}
		for _, measure := range sel.Measures {
			pairs++
			rec, err := Summarize(filtered, group, measure)
			if err != nil {
				missing++
				s.logger.DebugContext(ctx, "pair has no change record",
					slog.String("group", group),
					slog.String("measure", measure),
					slog.String("error", err.Error()))
				gs.Entries = append(gs.Entries, domain.ChangeEntry{Measure: measure, Err: err})
				continue
			}
			if !rec.PercentChange.Defined {
				undefined++
			}
			gs.Entries = append(gs.Entries, domain.ChangeEntry{Measure: measure, Record: &rec})
		}
		summaries = append(summaries, gs)
	}

	s.logger.InfoContext(ctx, "change summary computed",
		slog.Int("groups", len(sel.Groups)),
		slog.Int("pairs", pairs),
		slog.Int("missing", missing),
		slog.Int("undefined", undefined))
	if s.observer != nil {
		s.observer.ObserveSummary(ctx, pairs, missing, undefined)
	}
	return summaries
}

// CountMissing returns the number of entries without a record
func CountMissing(summaries []domain.GroupSummary) int {
	n := 0
	for _, gs := range summaries {
		for _, e := range gs.Entries {
			if !e.OK() {
				n++
			}
		}
	}
	return n
}
