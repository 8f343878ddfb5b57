// Package shared holds code used across the dashboard packages that belongs
// to no single layer.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on log output
//   - observation fixtures and CSV/XLSX fixture files
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteCSV(t, testutil.SampleObservations())
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "dataset loaded")
//	}
package shared
