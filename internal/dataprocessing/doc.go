// Package dataprocessing implements the accuracy dashboard pipeline: loading
// the observation table, narrowing it to a selection, building per-measure
// series and summarizing the Day 1 to Day 2 change of each (group, measure)
// pair.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. RecordStore: loads a source once and caches the parsed Dataset
// 2. Filter: keeps the observations of the selected measures and groups
// 3. BuildSeries: restricts a filtered table to one measure for charting
// 4. ChangeSummarizer: computes percent change per (group, measure) pair
//
// # Usage
//
//	store := dataprocessing.NewRecordStore(dataprocessing.NewSourceReader(logger, sheetsCfg), logger, dataprocessing.DefaultStoreConfig())
//	ds, err := store.LoadPath(ctx, "data/combined.csv")
//	if err != nil {
//	    return err // *DataLoadError
//	}
//	sel := ds.FullSelection()
//	filtered := dataprocessing.Filter(ds.Observations(), sel)
//	series := dataprocessing.BuildAllSeries(filtered, sel)
//	summaries := dataprocessing.NewChangeSummarizer(logger).SummarizeAll(ctx, filtered, sel)
//
// # Data Flow
//
//	Source → RecordStore → Filter → { BuildSeries, ChangeSummarizer } → presentation
//
// # Error Handling
//
// Load failures are reported as *DataLoadError and abort the pipeline.
// A (group, measure) pair lacking a Day 1 or Day 2 row yields a
// *MissingDataError on that entry only. A zero Day 1 baseline is not an
// error: the percent change is domain.UndefinedChange and renders as "N/A".
package dataprocessing
