package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/results"
	"github.com/docuscore/docuscore/internal/rubric"
	"github.com/docuscore/docuscore/internal/storage"
)

const maxUploadBytes = 64 << 20

type gradeResponse struct {
	ResultID string `json:"result_id"`
	*engine.GradeResult
}

// POST /grade
// multipart form: file (required), rubric (preset or stored name) or
// rubric_json (inline definition), file_type (optional override),
// only (repeatable criterion ids, comma-separated accepted).
func GradeHandler(eng *engine.Engine, store results.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		rub, err := rubricFromRequest(r, store)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fileType := rub.FileType
		if ft := strings.TrimSpace(r.FormValue("file_type")); ft != "" {
			fileType = rubric.FileType(ft)
		}

		res, err := eng.GradeBytes(r.Context(), raw, hdr.Filename, fileType, rub, onlyIDs(r))
		if err != nil {
			http.Error(w, "grade: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if blobs != nil {
			_, _ = blobs.Put(storage.SubmissionKey(res.FileID, hdr.Filename), bytes.NewReader(raw))
		}
		id, err := store.SaveResult(r.Context(), res)
		if err != nil {
			http.Error(w, "save result: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gradeResponse{ResultID: id, GradeResult: res})
	}
}

type batchResponse struct {
	Results []gradeResponse     `json:"results"`
	Errors  []engine.BatchError `json:"errors"`
}

// POST /grade/batch
// multipart form: files (repeatable), plus the same rubric selection
// fields as /grade. Files that fail are reported alongside the ones
// that graded; the call itself only fails on a bad rubric.
func BatchGradeHandler(eng *engine.Engine, store results.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
			return
		}
		rub, err := rubricFromRequest(r, store)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fileType := rub.FileType
		if ft := strings.TrimSpace(r.FormValue("file_type")); ft != "" {
			fileType = rubric.FileType(ft)
		}

		// Each upload gets an id before grading; filenames may repeat, so
		// results correlate back to their bytes through FileID alone.
		var files []engine.BatchFile
		byID := map[string][]byte{}
		if r.MultipartForm != nil {
			for _, hdr := range r.MultipartForm.File["files"] {
				src, err := hdr.Open()
				if err != nil {
					continue
				}
				data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
				src.Close()
				if err != nil {
					continue
				}
				id := uuid.NewString()
				files = append(files, engine.BatchFile{ID: id, Filename: hdr.Filename, Data: data})
				byID[id] = data
			}
		}
		if len(files) == 0 {
			http.Error(w, "at least one files entry required", http.StatusBadRequest)
			return
		}

		graded, failed := eng.GradeBatch(r.Context(), files, fileType, rub, onlyIDs(r))
		resp := batchResponse{Errors: failed}
		for _, res := range graded {
			if blobs != nil {
				// Re-grading needs the original bytes; best effort only.
				if data, ok := byID[res.FileID]; ok {
					_, _ = blobs.Put(storage.SubmissionKey(res.FileID, res.Filename), bytes.NewReader(data))
				}
			}
			id, err := store.SaveResult(r.Context(), res)
			if err != nil {
				resp.Errors = append(resp.Errors, engine.BatchError{
					FileID: res.FileID, Filename: res.Filename, Error: "save: " + err.Error(),
				})
				continue
			}
			resp.Results = append(resp.Results, gradeResponse{ResultID: id, GradeResult: res})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func rubricFromRequest(r *http.Request, store results.Store) (rubric.Rubric, error) {
	if inline := r.FormValue("rubric_json"); inline != "" {
		var rub rubric.Rubric
		if err := json.Unmarshal([]byte(inline), &rub); err != nil {
			return rubric.Rubric{}, err
		}
		if err := rub.Validate(); err != nil {
			return rubric.Rubric{}, err
		}
		return rub, nil
	}
	name := strings.TrimSpace(r.FormValue("rubric"))
	if name == "" {
		name = "presentation-default"
	}
	return store.GetRubric(r.Context(), name)
}

func onlyIDs(r *http.Request) []string {
	var out []string
	for _, v := range r.Form["only"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
