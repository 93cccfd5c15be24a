package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler  http.Handler
	sessions *session.Manager
	streams  *StreamManager
}

func newFixture(t *testing.T, opts ...builder.Option) fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	opts = append(opts, builder.WithPublisher(streams), builder.WithIDGenerator(builder.NewCounterGenerator("a")))
	sessions := session.NewManager(session.NewFactory(opts...))
	return fixture{
		handler:  NewHandler(sessions, WithStreams(streams)),
		sessions: sessions,
		streams:  streams,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeMutation(t *testing.T, w *httptest.ResponseRecorder) MutationResponse {
	t.Helper()
	var resp MutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.NotEmpty(t, info["version"])
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/sessions/{sessionId}/actions"))

	f := newFixture(t)
	w := f.do(t, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestGetCatalog(t *testing.T) {
	w := newFixture(t).do(t, "GET", "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []domain.CatalogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 12)
	assert.Equal(t, domain.ActionFiles, entries[0].Type)
	assert.Equal(t, domain.ActionDelay, entries[11].Type)
}

func TestGetSession_Formats(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"title": "Untitled Workflow"`)

	w = f.do(t, "GET", "/sessions/s1?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Untitled Workflow")

	w = f.do(t, "GET", "/sessions/s1?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "title: Untitled Workflow")

	w = f.do(t, "GET", "/sessions/s1?format=text", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Drag actions here to build your workflow")

	w = f.do(t, "GET", "/sessions/s1?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, "GET", "/sessions", "")
	assert.JSONEq(t, `["s1"]`, w.Body.String())
}

func TestAddAndRemoveAction(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/sessions/s1/actions", `{"type":"files"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeMutation(t, w)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "a1", resp.Action.ID)
	assert.Equal(t, "Get Specified Files", resp.Action.Name)
	assert.True(t, resp.Changed)
	require.Len(t, resp.View.Cards, 1)
	assert.Equal(t, 1, resp.View.Cards[0].Index)

	w = f.do(t, "POST", "/sessions/s1/actions", `{"type":"custom","name":"My Step"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	resp = decodeMutation(t, w)
	require.Len(t, resp.View.Cards, 2)
	assert.Equal(t, "My Step", resp.View.Cards[1].Name)

	w = f.do(t, "DELETE", "/sessions/s1/actions/a1", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeMutation(t, w)
	require.Len(t, resp.View.Cards, 1)
	assert.Equal(t, "a2", resp.View.Cards[0].ID)
	assert.Equal(t, 1, resp.View.Cards[0].Index)
	require.NotNil(t, resp.Diff)
	assert.Equal(t, []string{"a1"}, resp.Diff.Workflows["1"].Removed)
}

func TestAddAction_BadRequests(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, "POST", "/sessions/s1/actions", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "POST", "/sessions/s1/actions", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "POST", "/sessions/s1/actions", `{"type":"teleport"}`).Code)
}

func TestLenientMissingReferences(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/sessions/s1/actions", `{"type":"files","workflow_id":"nope"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeMutation(t, w)
	assert.Nil(t, resp.Action)
	assert.False(t, resp.Changed)

	w = f.do(t, "DELETE", "/sessions/s1/actions/missing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeMutation(t, w).Changed)
}

func TestStrictMissingReferences(t *testing.T) {
	f := newFixture(t, builder.WithStrict(true))

	w := f.do(t, "POST", "/sessions/s1/actions", `{"type":"files","workflow_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "DELETE", "/sessions/s1/actions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "PUT", "/sessions/s1/selection", `{"workflow_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenameSelectToggle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "PUT", "/sessions/s1/name", `{"name":"  Batch Resize  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "  Batch Resize  ", decodeMutation(t, w).View.Title)

	assert.Equal(t, http.StatusBadRequest, f.do(t, "PUT", "/sessions/s1/name", `{}`).Code)

	w = f.do(t, "POST", "/sessions/s1/library/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeMutation(t, w)
	assert.False(t, resp.View.Library.Visible)
	require.NotNil(t, resp.Diff)
	require.NotNil(t, resp.Diff.LibraryVisible)
	assert.False(t, *resp.Diff.LibraryVisible)

	w = f.do(t, "PUT", "/sessions/s1/selection", `{"workflow_id":"ghost"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeMutation(t, w)
	assert.Empty(t, resp.View.Title)
	assert.Nil(t, resp.View.Empty)
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/sessions/s1/actions", `{"type":"files"}`)

	assert.Equal(t, http.StatusNoContent, f.do(t, "DELETE", "/sessions/s1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "DELETE", "/sessions/s1", "").Code)

	w := f.do(t, "GET", "/sessions/s1", "")
	assert.Contains(t, w.Body.String(), `"cards": []`)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	sessions := session.NewManager(session.NewFactory(builder.WithMetrics(metrics)), session.WithMetrics(metrics))
	handler := NewHandler(sessions, WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	req := httptest.NewRequest("POST", "/sessions/s1/actions", strings.NewReader(`{"type":"files"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `automator_mutations_total{op="add_action",outcome="applied"} 1`)
	assert.Contains(t, w.Body.String(), "automator_sessions 1")
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s1/events?types=action_added", nil)
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	lines := bufio.NewScanner(res.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool { return f.streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	// Filtered out by the types parameter.
	f.do(t, "POST", "/sessions/s1/library/toggle", "")
	f.do(t, "POST", "/sessions/s1/actions", `{"type":"http"}`)

	var got []string
	for lines.Scan() {
		line := lines.Text()
		if strings.HasPrefix(line, "event: ") && line != "event: ping" {
			got = append(got, line)
			require.True(t, lines.Scan())
			assert.Contains(t, lines.Text(), `"type":"action_added"`)
			assert.Contains(t, lines.Text(), `"session_id":"s1"`)
			break
		}
	}
	assert.Equal(t, []string{"event: action_added"}, got)
}

func TestStreamManager_Publish(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s1")
	other, cancelOther := sm.Subscribe("s2")
	defer cancelOther()

	err := sm.Publish(context.Background(), domain.Event{Type: domain.EventLibraryToggled, SessionID: "s1"})
	require.NoError(t, err)

	select {
	case msg := <-ch:
		assert.Equal(t, "library_toggled", msg.Event)
		assert.Contains(t, msg.Data, `"session_id":"s1"`)
	default:
		t.Fatal("expected a message for s1")
	}
	select {
	case msg := <-other:
		t.Fatalf("unexpected message for s2: %v", msg)
	default:
	}

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s1"))
	_, open := <-ch
	assert.False(t, open)
}
