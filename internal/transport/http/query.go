package http

import (
	"net/http"
	"net/url"

	api "github.com/jgtann/gdp-dashboard/pkg/contracts/api/v1"
)

// Query parameter names
const (
	ParamMeasure = "measure"
	ParamGroup   = "group"
	ParamSource  = "source"
)

// ParseSelection reads the selection from the query string. An absent
// parameter selects every value; a parameter present only with empty values
// (measure=) selects none. Multiple values are passed as repeated
// parameters. Values are kept verbatim since labels may carry spaces.
func ParseSelection(r *http.Request) api.SelectionRequest {
	q := r.URL.Query()
	return api.SelectionRequest{
		Measures: queryValues(q, ParamMeasure),
		Groups:   queryValues(q, ParamGroup),
	}
}

func queryValues(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SelectionQuery encodes a selection back into query parameters, the
// inverse of ParseSelection.
func SelectionQuery(sel api.SelectionRequest) url.Values {
	q := url.Values{}
	encode := func(key string, values []string) {
		if values == nil {
			return
		}
		if len(values) == 0 {
			q.Set(key, "")
			return
		}
		for _, v := range values {
			q.Add(key, v)
		}
	}
	encode(ParamMeasure, sel.Measures)
	encode(ParamGroup, sel.Groups)
	return q
}
