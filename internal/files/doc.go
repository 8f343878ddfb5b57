// Package files discovers observation tables on disk.
//
// Discovery lists the files of a data directory that the record store can
// load (.csv, .txt, .xlsx, .xlsm), skipping hidden files and Excel lock
// files, so the dashboard can offer them as selectable sources.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/srv/dashboard")
//	sources, err := discovery.FindSources("data")
package files
