package client_test

import (
	"context"
	"errors"
	"github.com/ValentinKolb/dTodo/api"
	"github.com/ValentinKolb/dTodo/api/client"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/db/engines/maple"
	"github.com/ValentinKolb/dTodo/lib/store/lstore"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	srv := httptest.NewServer(api.NewServer(api.Config{LogLevel: "info"}, todo.NewService(s)).Handler())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, client.WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClientCRUD(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	created, err := c.Create(ctx, todo.Draft{ID: "9", Title: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "9" || created.Title != "x" || created.CreatedAt.IsZero() || created.CompletedAt != nil {
		t.Errorf("Unexpected created todo %+v", created)
	}

	got, err := c.Get(ctx, "9")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "x" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("Get returned %+v, expected %+v", got, created)
	}

	done := true
	updated, err := c.Update(ctx, "9", todo.Patch{Completed: &done})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Completed || updated.CompletedAt == nil {
		t.Errorf("Expected completed todo, got %+v", updated)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "9" {
		t.Errorf("Expected one todo, got %v", list)
	}

	msg, err := c.Delete(ctx, "9")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if msg != "Todo deleted" {
		t.Errorf("Unexpected delete message %q", msg)
	}

	_, err = c.Get(ctx, "9")
	if !client.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected *HTTPError with 404, got %v", err)
	}

	_, err = c.Update(ctx, "9", todo.Patch{Completed: &done})
	if !client.IsNotFound(err) {
		t.Errorf("Expected not found on update of deleted todo, got %v", err)
	}
}

func TestClientListEmpty(t *testing.T) {
	c := newClient(t)

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %v", list)
	}
}

func TestClientSeedAndRandom(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.Random(ctx)
	if !errors.Is(err, client.ErrNoTodo) {
		t.Fatalf("Expected ErrNoTodo on empty service, got %v", err)
	}
	if !strings.Contains(err.Error(), "No todos found") {
		t.Errorf("Expected server message in error, got %v", err)
	}

	msg, err := c.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if msg != "Seed data inserted" {
		t.Errorf("Unexpected seed message %q", msg)
	}

	two, err := c.Get(ctx, "2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !two.Completed || two.CompletedAt == nil {
		t.Errorf("Expected completed seed todo, got %+v", two)
	}

	r, err := c.Random(ctx)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	found := false
	for _, id := range todo.SeedIDs() {
		if r.ID == id {
			found = true
		}
	}
	if !found {
		t.Errorf("Random returned unknown todo %+v", r)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.List(context.Background())
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError || strings.TrimSpace(string(httpErr.Body)) != "boom" {
		t.Errorf("Unexpected error %v", httpErr)
	}
	if client.IsNotFound(err) {
		t.Errorf("500 must not be reported as not found")
	}
}

func TestClientSingleRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := client.New(srv.URL)
	if _, err := c.Seed(context.Background()); err == nil {
		t.Fatalf("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected exactly one request, got %d", calls)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := client.New(url, client.WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Get(context.Background(), "1")
	if err == nil {
		t.Fatalf("Expected transport error")
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		t.Errorf("Transport errors must not be HTTPErrors: %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := client.New(" "); err == nil {
		t.Errorf("Expected error for empty base URL")
	}
	if _, err := client.New("localhost:8787"); err != nil {
		t.Errorf("Expected missing scheme to default to http, got %v", err)
	}
}

func TestBaseURLPathPrefix(t *testing.T) {
	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
	mux := http.NewServeMux()
	mux.Handle("/worker/", http.StripPrefix("/worker", api.NewServer(api.Config{LogLevel: "info"}, todo.NewService(s)).Handler()))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	for _, base := range []string{srv.URL + "/worker", srv.URL + "/worker/"} {
		c, err := client.New(base)
		if err != nil {
			t.Fatalf("New(%s): %v", base, err)
		}
		if _, err := c.Create(ctx, todo.Draft{ID: "a b/c", Title: "prefixed"}); err != nil {
			t.Fatalf("%s: Create failed: %v", base, err)
		}
		got, err := c.Get(ctx, "a b/c")
		if err != nil || got.Title != "prefixed" {
			t.Errorf("%s: Get returned %+v, %v", base, got, err)
		}
		if todos, err := c.List(ctx); err != nil || len(todos) != 1 {
			t.Errorf("%s: List returned %v, %v", base, todos, err)
		}
	}
}
