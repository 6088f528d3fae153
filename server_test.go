package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer() (*Server, http.Handler) {
	s := NewServer(&Config{}, nil)
	return s, s.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServerCreateAndList(t *testing.T) {
	_, h := newTestServer()

	rec := do(t, h, http.MethodPost, "/api/v1/elements", `{"type":"Label"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[DropResult](t, rec)
	assert.True(t, res.Created)
	assert.Equal(t, Label, res.Element.Type)
	assert.Equal(t, PalettePosition, res.Element.Position)

	rec = do(t, h, http.MethodPost, "/api/v1/elements", `{"type":"Button","position":{"top":4,"left":9}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/elements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]Element](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, Label, list[0].Type)
	assert.Equal(t, Position{Top: 4, Left: 9}, list[1].Position)
}

func TestServerCreateErrors(t *testing.T) {
	_, h := newTestServer()

	rec := do(t, h, http.MethodPost, "/api/v1/elements", `{"type":"Image"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/elements", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/elements", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestServerDropRelocation(t *testing.T) {
	s, h := newTestServer()
	el := mustCreate(t, s.registry, Hyperlink, Position{})

	rec := do(t, h, http.MethodPost, "/api/v1/drop",
		`{"id":"`+string(el.ID)+`","type":"Hyperlink","position":{"top":2,"left":5},"isRelocation":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[DropResult](t, rec)
	assert.True(t, res.Moved)
	assert.Equal(t, Position{Top: 2, Left: 5}, res.Element.Position)

	rec = do(t, h, http.MethodPost, "/api/v1/drop", `{"id":"missing","position":{"top":1,"left":1},"isRelocation":true}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, s.registry.Len())
}

func TestServerSelectionAndEdit(t *testing.T) {
	s, h := newTestServer()
	el := mustCreate(t, s.registry, Label, Position{})
	path := "/api/v1/elements/" + string(el.ID)

	rec := do(t, h, http.MethodGet, path+"/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[SelectionView](t, rec)
	assert.Equal(t, "16", view.FontSize)
	assert.Equal(t, "3", view.MarginTop)

	rec = do(t, h, http.MethodPatch, path, `{"property":"fontSize","value":"18"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[Element](t, rec)
	assert.Equal(t, "18px", got.Style[StyleFontSize])
	assert.Equal(t, "18px", got.FontSize)

	rec = do(t, h, http.MethodGet, path+"/selection", "")
	assert.Equal(t, "18", decode[SelectionView](t, rec).FontSize)

	rec = do(t, h, http.MethodPatch, path, `{"property":"fontSize","value":"huge"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/v1/elements/missing", `{"property":"text","value":"x"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/elements/missing/selection", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerExport(t *testing.T) {
	s, h := newTestServer()
	for _, el := range sampleElements() {
		require.NoError(t, s.registry.Add(el))
	}

	rec := do(t, h, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[Artifacts](t, rec)
	assert.Equal(t, Export(sampleElements()), a)

	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/export", nil)
	req.Header.Set("If-None-Match", tag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/export?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, a.Structure, doc["structure"])
}

func TestServerExportArtifact(t *testing.T) {
	s, h := newTestServer()
	for _, el := range sampleElements() {
		require.NoError(t, s.registry.Add(el))
	}
	want := Export(sampleElements())

	rec := do(t, h, http.MethodGet, "/api/v1/export/presentation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want.Presentation, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	rec = do(t, h, http.MethodGet, "/api/v1/export/snapshot", "")
	snapshot, err := want.SnapshotJSON()
	require.NoError(t, err)
	assert.Equal(t, string(snapshot), rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/export/stylesheet", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerRunShutsDown(t *testing.T) {
	s := NewServer(&Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerSelectionLeavesBridgeAlone(t *testing.T) {
	s, h := newTestServer()
	a := mustCreate(t, s.registry, Label, Position{})
	b := mustCreate(t, s.registry, Button, Position{Top: 3})
	s.bridge.Select(a.ID)

	rec := do(t, h, http.MethodGet, "/api/v1/elements/"+string(b.ID)+"/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[SelectionView](t, rec)
	assert.Equal(t, b.ID, view.ID)
	assert.Equal(t, "blue.900", view.BackgroundColor)

	id, ok := s.bridge.Selected()
	require.True(t, ok)
	assert.Equal(t, a.ID, id)
	assert.Equal(t, "Label Text", s.bridge.View().Text)

	do(t, h, http.MethodGet, "/api/v1/elements/missing/selection", "")
	id, _ = s.bridge.Selected()
	assert.Equal(t, a.ID, id, "a miss does not clear the selection")
}
