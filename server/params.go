package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kasuboski/rollwatch/pkg/pagination"
)

// pathID reads the rolling show id from the route
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be positive integer", raw)
	}
	return id, nil
}

// pageParams reads page and pageSize from the query string. A missing pageSize lists every row.
func pageParams(r *http.Request) (pagination.Params, error) {
	q := r.URL.Query()

	page, err := queryInt(q, "page", 1, 1)
	if err != nil {
		return pagination.Params{}, err
	}
	size, err := queryInt(q, "pageSize", 0, 0)
	if err != nil {
		return pagination.Params{}, err
	}

	return pagination.Params{Page: page, PageSize: size}, nil
}

func queryInt(q url.Values, key string, fallback, min int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return 0, fmt.Errorf("invalid %s %q: must be an integer >= %d", key, raw, min)
	}
	return v, nil
}
