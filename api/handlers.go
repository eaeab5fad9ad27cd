package api

import (
	"encoding/json"
	"errors"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"net/http"
)

type messageResponse struct {
	Message string `json:"message"`
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

// handleRandom answers with a random todo, or a plain text message if there is none
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	t, err := s.todos.Random()
	switch {
	case errors.Is(err, todo.ErrEmpty):
		writeText(w, "No todos found")
	case errors.Is(err, todo.ErrNotFound):
		writeText(w, "Todo not found")
	case err != nil:
		writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d todo.Draft
	if !decodeBody(w, r, &d) {
		return
	}
	t, err := s.todos.Create(d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.todos.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p todo.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	t, err := s.todos.Update(r.PathValue("id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Todo deleted"})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Seed(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Seed data inserted"})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// decodeBody decodes the JSON request body into v. Unknown fields are ignored.
// On failure a 400 response is written and false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Logger.Debugf("%s %s: invalid body: %v", r.Method, r.URL.Path, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Errorf("failed to write response: %v", err)
	}
}

func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(msg)); err != nil {
		Logger.Errorf("failed to write response: %v", err)
	}
}

// writeError maps service errors to responses. Everything except ErrNotFound is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, todo.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	Logger.Errorf("%s %s (%s): %v", r.Method, r.URL.Path, store.CodeOf(err), err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
