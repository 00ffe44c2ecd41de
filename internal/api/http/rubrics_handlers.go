package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docuscore/docuscore/internal/results"
	"github.com/docuscore/docuscore/internal/rubric"
)

// GET /rubrics
func ListRubricsHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListRubrics(r.Context())
		if err != nil {
			http.Error(w, "list rubrics: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /rubrics/{name} — stored rubrics first, presets as fallback.
func GetRubricHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(chi.URLParam(r, "name"))
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		rub, err := store.GetRubric(r.Context(), name)
		if err != nil {
			http.Error(w, "rubric not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rub)
	}
}

// POST /rubrics — create or update a custom rubric.
func PutRubricHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rub rubric.Rubric
		if err := json.NewDecoder(r.Body).Decode(&rub); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.PutRubric(r.Context(), rub); err != nil {
			http.Error(w, "put rubric: "+err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"name": rub.Name, "version": rub.Version})
	}
}
