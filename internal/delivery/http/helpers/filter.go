package helpers

import (
	"net/http"
	"strconv"
	"time"

	"eventhub/internal/domain"
)

// ParseEventFilter maps event listing query parameters to a domain.EventFilter.
// Pure function over the query string; unknown or malformed values are
// ignored. Status defaults to approved so unauthenticated browsing never
// surfaces pending or rejected events.
func ParseEventFilter(r *http.Request) domain.EventFilter {
	query := r.URL.Query()

	filter := domain.EventFilter{
		Status:      domain.EventStatusApproved,
		Category:    query.Get("category"),
		OrganizerID: query.Get("organizer"),
		Location:    query.Get("location"),
		Search:      query.Get("search"),
		SortBy:      query.Get("sortBy"),
		SortOrder:   query.Get("sortOrder"),
	}
	if s := query.Get("status"); s != "" {
		filter.Status = s
	}
	if s := query.Get("isVirtual"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			filter.IsVirtual = &v
		}
	}
	if t, ok := parseDate(query.Get("date")); ok {
		filter.Date = &t
	}
	start, okStart := parseDate(query.Get("startDate"))
	end, okEnd := parseDate(query.Get("endDate"))
	if okStart && okEnd {
		filter.StartDate = &start
		filter.EndDate = &end
	}
	if v, ok := parseFloat(query.Get("priceMin")); ok {
		filter.PriceMin = &v
	}
	if v, ok := parseFloat(query.Get("priceMax")); ok {
		filter.PriceMax = &v
	}
	return filter
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
