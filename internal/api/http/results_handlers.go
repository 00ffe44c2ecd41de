package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docuscore/docuscore/internal/results"
)

// GET /results/{resultID}
func GetResultHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "resultID"))
		if id == "" {
			http.Error(w, "resultID required", http.StatusBadRequest)
			return
		}
		res, err := store.GetResult(r.Context(), id)
		if errors.Is(err, results.ErrNotFound) {
			http.Error(w, "result not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "get result: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GET /results?rubric=...&file_type=...&limit=50&offset=0
func ListResultsHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListResults(r.Context(), results.ListOpts{
			RubricName: strings.TrimSpace(r.URL.Query().Get("rubric")),
			FileType:   strings.TrimSpace(r.URL.Query().Get("file_type")),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, "list results: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
