package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"khidmaBack/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	dateLayout   = "2006-01-02"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}
	return r.URL.Query().Get(name)
}

func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(getParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseListParams reads page, limit, sort, order and q. Limit is capped at 100.
func parseListParams(r *http.Request) models.ListParams {
	q := r.URL.Query()
	p := models.ListParams{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	p.Sort = strings.TrimSpace(q.Get("sort"))
	p.Desc = strings.EqualFold(q.Get("order"), "desc")
	p.Query = strings.TrimSpace(q.Get("q"))
	return p
}

func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fieldError(r, name)
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fieldError(r, name)
	}
	return &v, nil
}

// queryDate parses YYYY-MM-DD in UTC.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fieldError(r, name)
	}
	return &t, nil
}

// queryIDs parses a comma separated id list.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fieldError(r, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
