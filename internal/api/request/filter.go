package request

import (
	"net/http"
	"strings"
)

// ListParams holds the filters shared by the snapshot and drill list endpoints.
type ListParams struct {
	Limit              int
	Environment        string
	Status             string
	VerificationStatus string
	Source             string
	Scenario           string
}

// ParseListParams extracts list filters from the query string. Enum values
// are passed through untouched; the services reject unknown ones.
func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	return ListParams{
		Limit:              ParseLimit(r),
		Environment:        strings.TrimSpace(q.Get("environment")),
		Status:             strings.TrimSpace(q.Get("status")),
		VerificationStatus: strings.TrimSpace(q.Get("verificationStatus")),
		Source:             strings.TrimSpace(q.Get("source")),
		Scenario:           strings.TrimSpace(q.Get("scenario")),
	}
}
