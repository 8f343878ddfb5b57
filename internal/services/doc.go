// Package services implements the dashboard's use cases on top of the
// record store, the selection pipeline and the renderers.
//
// Handlers and CLI commands resolve a dataset first (so they can answer
// conditional requests from its fingerprint) and then ask the service for
// options, series, summaries, charts or exports of a selection. A selection
// request leaves a dimension nil to mean "everything"; an empty non-nil
// slice selects nothing.
//
//	ds, err := svc.Dataset(ctx, "")
//	if err != nil {
//		return err
//	}
//	summary, err := svc.Summary(ctx, ds, api.SelectionRequest{Groups: []string{"Control"}})
package services
