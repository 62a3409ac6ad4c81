package request

import (
	"net/http"
	"strconv"
)

// ParseLimit reads the limit query parameter. Missing or non-positive values
// return 0 so the service applies its default; the service also caps it.
func ParseLimit(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
