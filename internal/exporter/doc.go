// Package exporter writes change summaries as CSV, JSON or XLSX.
//
// Every format carries the same flattened rows: one per selected
// (group, measure) pair, in group-then-measure order, with the raw Day 1
// and Day 2 means, the percent change and the two display strings shown on
// the dashboard. Pairs lacking a day, or with a zero Day 1 mean, are
// exported with "N/A" display values and empty numeric cells.
//
// Example usage:
//
//	w, err := exporter.For(exporter.FormatXLSX)
//	if err != nil {
//		return err
//	}
//	err = w.Write(out, summaries)
package exporter
