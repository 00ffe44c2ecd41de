package http

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/results"
	"github.com/docuscore/docuscore/internal/rubric"
)

type fakeStore struct {
	saved   map[string]*engine.GradeResult
	rubrics map[string]rubric.Rubric
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		saved:   map[string]*engine.GradeResult{},
		rubrics: map[string]rubric.Rubric{},
	}
}

func (s *fakeStore) SaveResult(_ context.Context, res *engine.GradeResult) (string, error) {
	s.nextID++
	id := fmt.Sprintf("res-%d", s.nextID)
	s.saved[id] = res
	return id, nil
}

func (s *fakeStore) GetResult(_ context.Context, id string) (*engine.GradeResult, error) {
	res, ok := s.saved[id]
	if !ok {
		return nil, results.ErrNotFound
	}
	return res, nil
}

func (s *fakeStore) ListResults(_ context.Context, _ results.ListOpts) ([]*engine.GradeResult, error) {
	var out []*engine.GradeResult
	for _, r := range s.saved {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) PutRubric(_ context.Context, r rubric.Rubric) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.rubrics[r.Name] = r
	return nil
}

func (s *fakeStore) GetRubric(_ context.Context, name string) (rubric.Rubric, error) {
	if r, ok := s.rubrics[name]; ok {
		return r, nil
	}
	return rubric.Preset(name)
}

func (s *fakeStore) ListRubrics(_ context.Context) ([]rubric.Rubric, error) {
	out := rubric.Presets()
	for _, r := range s.rubrics {
		out = append(out, r)
	}
	return out, nil
}

type fakeBlobs struct {
	mu   sync.Mutex
	data map[string]string
}

func (b *fakeBlobs) Put(key string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		b.data = map[string]string{}
	}
	b.data[key] = string(raw)
	return key, nil
}

func (b *fakeBlobs) Get(string) (io.ReadCloser, error) { return nil, errors.New("not implemented") }

func (b *fakeBlobs) SignedURL(string) (string, error) { return "", errors.New("not implemented") }

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const minimalSlide = `<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody><a:p><a:r><a:t>Intro</a:t></a:r></a:p></p:txBody></p:sp>
  </p:spTree></p:cSld>
</p:sld>`

func gradeableDeck(t *testing.T) []byte {
	return buildZip(t, map[string]string{
		"ppt/presentation.xml":  `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml": minimalSlide,
		"ppt/slides/slide2.xml": minimalSlide,
		"ppt/slides/slide3.xml": minimalSlide,
	})
}

func TestGradeHandlerEndToEnd(t *testing.T) {
	store := newFakeStore()
	h := GradeHandler(engine.New(), store, nil)

	body, ctype := multipartUpload(t, "file", "deck.pptx", gradeableDeck(t),
		map[string]string{"rubric": "presentation-default"})
	req := httptest.NewRequest(http.MethodPost, "/grade", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp gradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ResultID)
	require.Equal(t, "presentation-default", resp.RubricName)
	require.Len(t, resp.ByCriteria, 10)
	require.Equal(t, 10.0, resp.MaxPossiblePoints)
	require.Contains(t, store.saved, resp.ResultID)
}

func TestGradeHandlerOnlySubsetKeepsDenominator(t *testing.T) {
	store := newFakeStore()
	h := GradeHandler(engine.New(), store, nil)

	body, ctype := multipartUpload(t, "file", "deck.pptx", gradeableDeck(t),
		map[string]string{"rubric": "presentation-default", "only": "structure,theme"})
	req := httptest.NewRequest(http.MethodPost, "/grade", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp gradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ByCriteria, 2)
	require.Equal(t, 10.0, resp.MaxPossiblePoints)
}

func TestGradeHandlerRejectsMissingFile(t *testing.T) {
	store := newFakeStore()
	h := GradeHandler(engine.New(), store, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("rubric", "presentation-default"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/grade", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeHandlerUnknownRubric(t *testing.T) {
	store := newFakeStore()
	h := GradeHandler(engine.New(), store, nil)

	body, ctype := multipartUpload(t, "file", "deck.pptx", gradeableDeck(t),
		map[string]string{"rubric": "no-such-rubric"})
	req := httptest.NewRequest(http.MethodPost, "/grade", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchGradeHandler(t *testing.T) {
	store := newFakeStore()
	h := BatchGradeHandler(engine.New(), store, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.pptx", "b.pptx"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(gradeableDeck(t))
		require.NoError(t, err)
	}
	// Not a container at all: becomes a per-file error, not a request error.
	fw, err := mw.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("rubric", "presentation-default"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/grade/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, "notes.txt", resp.Errors[0].Filename)
	require.Len(t, store.saved, 2)
}

func TestBatchGradeStoresEachUploadsOwnBytes(t *testing.T) {
	store := newFakeStore()
	blobs := &fakeBlobs{}
	h := BatchGradeHandler(engine.New(), store, blobs)

	deckA := gradeableDeck(t)
	deckB := buildZip(t, map[string]string{
		"ppt/presentation.xml":  `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slides/slide1.xml": minimalSlide,
	})

	// Both uploads share a filename; each result must keep its own bytes.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, deck := range [][]byte{deckA, deckB} {
		fw, err := mw.CreateFormFile("files", "dup.pptx")
		require.NoError(t, err)
		_, err = fw.Write(deck)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("rubric", "presentation-default"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/grade/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	require.Empty(t, resp.Errors)

	var stored []string
	for _, v := range blobs.data {
		stored = append(stored, v)
	}
	require.ElementsMatch(t, []string{string(deckA), string(deckB)}, stored)
}

func TestResultHandlers(t *testing.T) {
	store := newFakeStore()
	id, err := store.SaveResult(context.Background(), &engine.GradeResult{
		FileID: "f1", Filename: "deck.pptx", RubricName: "presentation-default",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/results/{resultID}", GetResultHandler(store))
	r.Get("/results", ListResultsHandler(store))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*engine.GradeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestRubricHandlers(t *testing.T) {
	store := newFakeStore()
	r := chi.NewRouter()
	r.Get("/rubrics", ListRubricsHandler(store))
	r.Get("/rubrics/{name}", GetRubricHandler(store))
	r.Post("/rubrics", PutRubricHandler(store))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rubrics/presentation-default", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rubrics/no-such-rubric", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	custom, err := rubric.Preset("document-default")
	require.NoError(t, err)
	custom.Name = "my-doc-rubric"
	body, err := json.Marshal(custom)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rubrics", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	bad, err := json.Marshal(rubric.Rubric{Name: "broken"})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rubrics", bytes.NewReader(bad)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/grade", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/grade", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	clock := time.Now()
	l := newIPLimiter(5, func() time.Time { return clock })

	for i := 0; i < 50; i++ {
		l.allow(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Len(t, l.clients, 50)

	// After the idle TTL passes, the next request sweeps the stale buckets.
	clock = clock.Add(limiterIdleTTL + limiterSweepEvery)
	l.allow("10.1.0.1")
	require.Len(t, l.clients, 1)

	// A recently seen client survives the sweep that evicts idle ones.
	clock = clock.Add(limiterIdleTTL / 2)
	l.allow("10.1.0.2")
	clock = clock.Add(limiterIdleTTL/2 + limiterSweepEvery)
	l.allow("10.1.0.3")
	require.NotContains(t, l.clients, "10.1.0.1")
	require.Contains(t, l.clients, "10.1.0.2")
}
