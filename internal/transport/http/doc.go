// Package http implements the HTTP handlers of the accuracy dashboard.
// Handlers are a thin layer over the services package: they parse the
// selection from the query string, call the service and render the result.
//
// # Routes
//
//	GET /                         dashboard page
//	GET /api/v1/sources           loadable files in the data directory
//	GET /api/v1/options           distinct measures and groups
//	GET /api/v1/series            trend series per selected measure
//	GET /api/v1/summary           Day 1 to Day 2 change per group
//	GET /api/v1/chart             chart page
//	GET /api/v1/chart.png         chart image
//	GET /api/v1/export/{format}   summary as csv, json or xlsx
//
// # Selection
//
// The measure and group parameters may be repeated. An absent parameter
// selects every value in first-seen order; a parameter present with an
// empty value selects nothing. Unknown values answer 400. The optional
// source parameter names a file from /api/v1/sources.
//
// # Errors
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Unknown measure: Latency",
//	    "instance": "/api/v1/summary"
//	}
//
// Responses of dataset routes carry the dataset fingerprint as ETag and
// answer If-None-Match with 304.
package http
