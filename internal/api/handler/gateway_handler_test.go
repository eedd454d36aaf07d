package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agriconnect/platform/internal/core/datastore"
	"github.com/agriconnect/platform/internal/infrastructure/db/memory"
)

func newGatewayTest(t *testing.T, idem IdempotencyChecker) (*echo.Echo, *GatewayHandler, *datastore.Store) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	store := datastore.New(memory.NewStore(), zerolog.Nop())
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	return e, NewGatewayHandler(store, idem), store
}

func doJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, method, target, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, decoded
}

func TestGatewayQueryReturnsFixtures(t *testing.T) {
	e, h, _ := newGatewayTest(t, nil)

	rec, body := doJSON(t, e, h.Query, http.MethodPost, "/api/query",
		`{"sql":"SELECT * FROM sectors","params":[]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope: %v", body)
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 3 {
		t.Fatalf("expected 3 fixture sectors, got %v", body["data"])
	}
}

func TestGatewayQueryEmptyResultIsStillAnArray(t *testing.T) {
	e, h, _ := newGatewayTest(t, nil)

	_, body := doJSON(t, e, h.Query, http.MethodPost, "/api/query",
		`{"sql":"SELECT * FROM sectors WHERE id = ?","params":[999]}`, nil)

	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("data must be a JSON array even when empty, got %T", body["data"])
	}
	if len(data) != 0 {
		t.Fatalf("expected no rows, got %v", data)
	}
}

func TestGatewayQueryMissingSQLIsRejected(t *testing.T) {
	e, h, _ := newGatewayTest(t, nil)

	rec, _ := doJSON(t, e, h.Query, http.MethodPost, "/api/query", `{"params":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGatewayRunBumpsRevisionOnChangeOnly(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	before := store.Revision()
	rec, body := doJSON(t, e, h.Run, http.MethodPost, "/api/run",
		`{"sql":"DELETE FROM sectors WHERE id = ?","params":[1]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body["changes"] != float64(1) {
		t.Fatalf("expected 1 change, got %v", body["changes"])
	}
	if store.Revision() != before+1 {
		t.Fatalf("successful run must bump the revision")
	}

	// The row is gone; running the same delete succeeds with zero changes
	// and still counts as a (successful) mutation.
	_, body = doJSON(t, e, h.Run, http.MethodPost, "/api/run",
		`{"sql":"DELETE FROM sectors WHERE id = ?","params":[1]}`, nil)
	if body["success"] != true || body["changes"] != float64(0) {
		t.Fatalf("repeat delete should succeed with 0 changes: %v", body)
	}
}

func TestGatewayRunInsertReportsLastInsertID(t *testing.T) {
	e, h, _ := newGatewayTest(t, nil)

	_, body := doJSON(t, e, h.Run, http.MethodPost, "/api/run",
		`{"sql":"INSERT INTO events (title, description) VALUES (?, ?)","params":["Kisan Mela","fair"]}`, nil)

	id, ok := body["lastInsertId"].(float64)
	if !ok || id < 1000 {
		t.Fatalf("expected a synthetic insert id, got %v", body["lastInsertId"])
	}
}

func TestGatewayRunStatementErrorKeepsRawMessage(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	before := store.Revision()
	rec, body := doJSON(t, e, h.Run, http.MethodPost, "/api/run",
		`{"sql":"DROP TABLE sectors","params":[]}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("expected failure envelope: %v", body)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "unsupported statement") {
		t.Fatalf("backend message should pass through verbatim, got %q", msg)
	}
	if store.Revision() != before {
		t.Fatalf("failed statements must not bump the revision")
	}
}

func TestGatewayExecuteDoesNotBumpRevision(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	before := store.Revision()
	rec, body := doJSON(t, e, h.Execute, http.MethodPost, "/api/execute",
		`{"sql":"DELETE FROM sectors WHERE id = ?","params":[2]}`, nil)

	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d: %v", rec.Code, body)
	}
	if store.Revision() != before {
		t.Fatalf("the console path must not bump the revision")
	}
}

// fakeIdem is an in-memory stand-in for the redis checker.
type fakeIdem struct {
	seen map[string]bool
}

func (f *fakeIdem) Seen(_ context.Context, key string) (bool, error) { return f.seen[key], nil }

func (f *fakeIdem) Mark(_ context.Context, key string) error {
	f.seen[key] = true
	return nil
}

func TestGatewayRunIdempotencyKeySkipsDuplicates(t *testing.T) {
	e, h, store := newGatewayTest(t, &fakeIdem{seen: map[string]bool{}})

	header := http.Header{"Idempotency-Key": []string{"req-123"}}
	body := `{"sql":"INSERT INTO events (title) VALUES (?)","params":["once"]}`

	_, first := doJSON(t, e, h.Run, http.MethodPost, "/api/run", body, header)
	if first["success"] != true || first["deduped"] == true {
		t.Fatalf("first submission should execute: %v", first)
	}
	afterFirst := store.Revision()

	_, second := doJSON(t, e, h.Run, http.MethodPost, "/api/run", body, header)
	if second["deduped"] != true {
		t.Fatalf("second submission should be deduplicated: %v", second)
	}
	if store.Revision() != afterFirst {
		t.Fatalf("deduplicated submissions must not execute")
	}
}

func TestGatewayScriptSuccessBumpsRevisionOnce(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	before := store.Revision()
	rec, body := doJSON(t, e, h.Script, http.MethodPost, "/api/script",
		`{"script":"SELECT * FROM sectors; SELECT * FROM events;"}`, nil)

	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d: %v", rec.Code, body)
	}
	if store.Revision() != before+1 {
		t.Fatalf("successful script must bump the revision exactly once")
	}
}

func TestGatewayScriptFailureReturnsRawMessage(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	before := store.Revision()
	rec, body := doJSON(t, e, h.Script, http.MethodPost, "/api/script",
		`{"script":"SELECT * FROM sectors; TRUNCATE sectors;"}`, nil)

	if rec.Code != http.StatusInternalServerError || body["success"] != false {
		t.Fatalf("unexpected response %d: %v", rec.Code, body)
	}
	if store.Revision() != before {
		t.Fatalf("failed scripts must not bump the revision")
	}
}

func TestGatewaySnapshotRoundTrip(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	// Mutate, export, mutate again, import: the second mutation must vanish.
	if _, err := store.Run(context.Background(), "DELETE FROM sectors WHERE id = ?", []any{int64(1)}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	rec, body := doJSON(t, e, h.ExportSnapshot, http.MethodGet, "/api/snapshot", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}
	blob, _ := body["snapshot"].(string)
	if blob == "" {
		t.Fatal("expected a base64 snapshot")
	}

	if _, err := store.Run(context.Background(), "DELETE FROM sectors WHERE id = ?", []any{int64(2)}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	rec, _ = doJSON(t, e, h.ImportSnapshot, http.MethodPost, "/api/snapshot",
		`{"snapshot":"`+blob+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import failed: %d %s", rec.Code, rec.Body.String())
	}

	rows, err := store.Query(context.Background(), "SELECT * FROM sectors", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected snapshot state (2 sectors), got %d", len(rows))
	}
}

func TestGatewayResetRestoresSeed(t *testing.T) {
	e, h, store := newGatewayTest(t, nil)

	if _, err := store.Run(context.Background(), "DELETE FROM sectors WHERE id = ?", []any{int64(1)}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	before := store.Revision()

	rec, _ := doJSON(t, e, h.Reset, http.MethodPost, "/api/reset", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", rec.Code)
	}
	if store.Revision() != before+1 {
		t.Fatalf("reset must bump the revision")
	}

	rows, _ := store.Query(context.Background(), "SELECT * FROM sectors", nil)
	if len(rows) != 3 {
		t.Fatalf("expected the 3 fixture sectors back, got %d", len(rows))
	}
}

func TestGatewayTestProbe(t *testing.T) {
	e, h, _ := newGatewayTest(t, nil)

	rec, body := doJSON(t, e, h.Test, http.MethodGet, "/api/test", "", nil)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("unexpected response %d: %v", rec.Code, body)
	}
}
