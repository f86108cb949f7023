package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"tasklist/internal/export"
	"tasklist/internal/model"
	"tasklist/internal/task"
)

// clearAllID in a DELETE body clears the whole list. POST /api/tasks/clear
// is the explicit form.
const clearAllID model.ID = "all"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// taskRequest accepts "text" or its older alias "title"; created_at is
// tolerated so clients can send back a listed task unchanged.
type taskRequest struct {
	ID        model.ID   `json:"id"`
	Text      *string    `json:"text"`
	Title     *string    `json:"title"`
	Done      bool       `json:"done"`
	CreatedAt *time.Time `json:"created_at"`
}

func (r taskRequest) text() string {
	switch {
	case r.Text != nil:
		return *r.Text
	case r.Title != nil:
		return *r.Title
	default:
		return ""
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := s.svc.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filterTasks(tasks, filters))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.Add(r.Context(), req.text())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.svc.Update(r.Context(), req.ID, req.text(), req.Done); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

// handleDeleteTask reads only the id; the rest of a task sent back as the
// body is ignored.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	switch req.ID {
	case "":
		writeError(w, http.StatusBadRequest, "id is required")
		return
	case clearAllID:
		err = s.svc.ClearAll(r.Context())
	default:
		err = s.svc.Delete(r.Context(), req.ID)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id := model.ID(strings.TrimSpace(mux.Vars(r)["id"]))
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearAll(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.Lookup(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.exporter.Export(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.`+f.Ext+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var be *task.BackendError
	switch {
	case errors.Is(err, task.ErrInvalidText):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &be):
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.logger.Error("unexpected service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
