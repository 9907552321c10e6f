package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsakani-green/envkeep/internal/backup"
)

// ListBackups returns all backups of the managed file, newest first.
func (s *Server) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.keeper.Backups().List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if backups == nil {
		backups = []backup.Backup{}
	}
	respondJSON(w, http.StatusOK, backups)
}

// CreateBackup snapshots the current env file.
func (s *Server) CreateBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.keeper.CreateBackup()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "env file does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// RestoreBackup replaces the env file with the named backup.
func (s *Server) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.keeper.Restore(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "backup not found")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"restored": name})
}

// History lists recorded revisions, most recent first. ?limit=N caps the
// page size.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if s.store == nil {
		respondError(w, http.StatusNotFound, "history store not configured")
		return
	}
	revs, err := s.store.ListRevisions(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, revs)
}
