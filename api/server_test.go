package api

import (
	"bytes"
	"encoding/json"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/db/engines/maple"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/store/lstore"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func newTestServer(t *testing.T, s store.IStore) *httptest.Server {
	t.Helper()
	if s == nil {
		s = lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	}
	svc := todo.NewService(s, todo.WithRandSource(rand.New(rand.NewPCG(1, 1))))
	srv := httptest.NewServer(NewServer(Config{Endpoint: "127.0.0.1:0", LogLevel: "debug"}, svc).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeTodo(t *testing.T, data []byte) todo.Todo {
	t.Helper()
	var td todo.Todo
	if err := json.Unmarshal(data, &td); err != nil {
		t.Fatalf("response is not a todo: %v (%s)", err, data)
	}
	return td
}

// brokenStore fails every operation
type brokenStore struct{}

var errBroken = store.NewError(store.RetCInternalError, "store unavailable")

func (brokenStore) Set(string, []byte) error { return errBroken }
func (brokenStore) Delete(string) error { return errBroken }
func (brokenStore) Get(string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStore) Has(string) (bool, error) { return false, errBroken }
func (brokenStore) Keys() ([]string, error) { return nil, errBroken }
func (brokenStore) GetDBInfo() (db.DatabaseInfo, error) { return db.DatabaseInfo{}, errBroken }

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestCreateResponseShape(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/todos", `{"id":"9","title":"x","completed":false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected json content type, got %q", ct)
	}

	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(m) != 6 {
		t.Errorf("Expected exactly 6 fields, got %v", m)
	}
	if m["id"] != "9" || m["title"] != "x" || m["completed"] != false || m["deleted"] != false {
		t.Errorf("Unexpected body %s", body)
	}
	if v, ok := m["completedAt"]; !ok || v != nil {
		t.Errorf("completedAt must be present and null, got %v", v)
	}
	createdAt, ok := m["createdAt"].(string)
	if !ok {
		t.Fatalf("createdAt must be a string, got %v", m["createdAt"])
	}
	if _, err := time.Parse(time.RFC3339, createdAt); err != nil {
		t.Errorf("createdAt is not RFC 3339: %v", err)
	}
}

func TestCreateThenGet(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy milk"}`)
	created := decodeTodo(t, body)

	resp, body := do(t, http.MethodGet, srv.URL+"/todos/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	got := decodeTodo(t, body)
	if got.ID != "1" || got.Title != "Buy milk" || got.CompletedAt != nil || got.CreatedAt.IsZero() {
		t.Errorf("Unexpected todo %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt differs: %v vs %v", got.CreatedAt, created.CreatedAt)
	}

	// a second create with the same id replaces the record
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy oat milk","completed":true}`)
	_, body = do(t, http.MethodGet, srv.URL+"/todos/1", "")
	if got := decodeTodo(t, body); got.Title != "Buy oat milk" || !got.Completed || got.CompletedAt != nil {
		t.Errorf("Expected replaced todo, got %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy milk"}`)

	resp, body := do(t, http.MethodPut, srv.URL+"/todos/1", `{"completed":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	first := decodeTodo(t, body)
	if !first.Completed || first.CompletedAt == nil || first.Title != "Buy milk" {
		t.Fatalf("Unexpected todo after completion %+v", first)
	}

	_, body = do(t, http.MethodPut, srv.URL+"/todos/1", `{"completed":true}`)
	second := decodeTodo(t, body)
	if second.CompletedAt == nil || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("completedAt changed on repeated completion: %v -> %v", first.CompletedAt, second.CompletedAt)
	}

	// the path id wins over an id in the body
	_, body = do(t, http.MethodPut, srv.URL+"/todos/1", `{"id":"2","title":"renamed","deleted":true}`)
	third := decodeTodo(t, body)
	if third.ID != "1" || third.Title != "renamed" || third.Deleted {
		t.Errorf("Unexpected merge result %+v", third)
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/todos/missing", `{"completed":true}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for missing todo, got %d", resp.StatusCode)
	}
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy milk"}`)

	resp, body := do(t, http.MethodDelete, srv.URL+"/todos/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"message":"Todo deleted"}` {
		t.Errorf("Unexpected delete response %s", body)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/todos/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}

	// no existence check
	resp, _ = do(t, http.MethodDelete, srv.URL+"/todos/never", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 when deleting a missing todo, got %d", resp.StatusCode)
	}
}

func TestList(t *testing.T) {
	srv := newTestServer(t, nil)

	_, body := do(t, http.MethodGet, srv.URL+"/todos", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("Expected empty array, got %s", body)
	}

	for _, id := range []string{"a", "b", "c"} {
		do(t, http.MethodPost, srv.URL+"/todos", `{"id":"`+id+`","title":"`+id+`"}`)
	}
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"a","title":"again"}`)
	do(t, http.MethodDelete, srv.URL+"/todos/c", "")

	_, body = do(t, http.MethodGet, srv.URL+"/todos", "")
	var todos []todo.Todo
	if err := json.Unmarshal(body, &todos); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ids := make([]string, 0, len(todos))
	for _, td := range todos {
		ids = append(ids, td.ID)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Expected [a b], got %v", ids)
	}
}

func TestSeed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/todos/seed", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"message":"Seed data inserted"}` {
		t.Errorf("Unexpected seed response %s", body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/todos/2", "")
	two := decodeTodo(t, body)
	if !two.Completed || two.CompletedAt == nil {
		t.Errorf("Expected seeded todo 2 to be completed, got %+v", two)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/todos", "")
	var todos []todo.Todo
	json.Unmarshal(body, &todos)
	if len(todos) != 5 {
		t.Errorf("Expected 5 todos after seeding, got %d", len(todos))
	}
}

func TestRandom(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/", "")
	if resp.StatusCode != http.StatusOK || string(body) != "No todos found" {
		t.Errorf("Expected 200 'No todos found', got %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text content type, got %q", ct)
	}

	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy milk"}`)
	resp, body = do(t, http.MethodGet, srv.URL+"/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if got := decodeTodo(t, body); got.ID != "1" {
		t.Errorf("Expected todo 1, got %+v", got)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/unknown", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestRandomTombstone(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	s.Set("1", []byte(`{"id":"1","title":"gone","deleted":true}`))
	srv := newTestServer(t, s)

	_, body := do(t, http.MethodGet, srv.URL+"/", "")
	if string(body) != "Todo not found" {
		t.Errorf("Expected 'Todo not found', got %q", body)
	}
}

// vanishingStore lists a key whose value is already gone when it is read
type vanishingStore struct {
	store.IStore
}

func (v vanishingStore) Keys() ([]string, error) { return []string{"raced"}, nil }

func TestRandomRacedDelete(t *testing.T) {
	srv := newTestServer(t, vanishingStore{lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })})

	resp, body := do(t, http.MethodGet, srv.URL+"/", "")
	if resp.StatusCode != http.StatusOK || string(body) != "Todo not found" {
		t.Errorf("Expected 200 'Todo not found', got %d %q", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/todos", "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("Expected empty list, got %d %s", resp.StatusCode, body)
	}
}

func TestBadRequestBody(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"1","title":"Buy milk"}`)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/todos", `{"id":`},
		{http.MethodPost, "/todos", ""},
		{http.MethodPut, "/todos/1", "not json"},
		{http.MethodPut, "/todos/1", `{"completed":"yes"}`},
	} {
		resp, _ := do(t, tc.method, srv.URL+tc.path, tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s %s %q: expected 400, got %d", tc.method, tc.path, tc.body, resp.StatusCode)
		}
	}
}

func TestStoreFailure(t *testing.T) {
	srv := newTestServer(t, brokenStore{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/", ""},
		{http.MethodGet, "/todos", ""},
		{http.MethodPost, "/todos", `{"id":"1"}`},
		{http.MethodGet, "/todos/1", ""},
		{http.MethodPut, "/todos/1", `{}`},
		{http.MethodDelete, "/todos/1", ""},
		{http.MethodPost, "/todos/seed", ""},
	} {
		resp, body := do(t, tc.method, srv.URL+tc.path, tc.body)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s %s: expected 500, got %d", tc.method, tc.path, resp.StatusCode)
		}
		if bytes.Contains(body, []byte("store unavailable")) {
			t.Errorf("%s %s: internal error details must not leak: %s", tc.method, tc.path, body)
		}
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/todos/1", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Errorf("Expected successful preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPut) {
		t.Errorf("Expected PUT to be allowed, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/todos", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected CORS header on /todos, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header on /, got %q", got)
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, http.MethodGet, srv.URL+"/todos", "")

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte(`dtodo_http_requests_total{route="list",code="200"}`)) {
		t.Errorf("Expected request counter in metrics output:\n%s", body)
	}
}

func TestMetricsStoreGauges(t *testing.T) {
	srv := newTestServer(t, nil)
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"a","title":"A"}`)
	do(t, http.MethodPost, srv.URL+"/todos", `{"id":"b","title":"B"}`)

	_, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	for _, want := range []string{"dtodo_store_keys 2\n", "dtodo_store_up 1\n"} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("Expected %q in metrics output:\n%s", want, body)
		}
	}

	broken := newTestServer(t, brokenStore{})
	resp, body := do(t, http.MethodGet, broken.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 with a failing store, got %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte("dtodo_store_up 0\n")) || bytes.Contains(body, []byte("dtodo_store_keys")) {
		t.Errorf("Expected only dtodo_store_up 0 for a failing store:\n%s", body)
	}
}

func TestConfig(t *testing.T) {
	c := Config{Endpoint: "0.0.0.0:8787", Store: StoreLocal, LogLevel: "info", TimeoutSecond: 10}
	if err := c.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
	if strings.Contains(c.String(), "Serializer") {
		t.Errorf("Local config should not print remote settings:\n%s", c.String())
	}

	c.Store = StoreRemote
	if err := c.Validate(); err == nil {
		t.Errorf("Remote store without endpoints must be rejected")
	}
	c.StoreEndpoints = []string{"http://localhost:8080"}
	if err := c.Validate(); err != nil {
		t.Errorf("Valid remote config rejected: %v", err)
	}
	if !strings.Contains(c.String(), "http://localhost:8080") {
		t.Errorf("Remote config should print the store endpoints:\n%s", c.String())
	}

	c.Store = "sql"
	if err := c.Validate(); err == nil {
		t.Errorf("Unknown store mode must be rejected")
	}
}
