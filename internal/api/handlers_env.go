package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/tsakani-green/envkeep/internal/metrics"
	"github.com/tsakani-green/envkeep/internal/preflight"
	"github.com/tsakani-green/envkeep/internal/report"
	"github.com/tsakani-green/envkeep/internal/secrets"
	"github.com/tsakani-green/envkeep/internal/validate"
)

const redacted = "[redacted]"

type envEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Secret bool   `json:"secret"`
}

// GetEnv returns the managed file's entries with secret values redacted.
// The daemon never ships secret material over the wire.
func (s *Server) GetEnv(w http.ResponseWriter, r *http.Request) {
	f, err := s.keeper.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "env file does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	values := f.Values()
	entries := make([]envEntry, 0, len(values))
	for _, key := range f.Keys() {
		e := envEntry{Key: key, Value: values[key], Secret: s.keeper.Registry().IsSecret(key)}
		if e.Secret && e.Value != "" && !validate.IsPlaceholder(e.Value) {
			e.Value = redacted
		}
		entries = append(entries, e)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"file":    s.keeper.File(),
		"entries": entries,
	})
}

// Validate runs the key-surface validation and returns the report.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	f, err := s.keeper.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "env file does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rep := validate.File(f, s.keeper.Registry())
	metrics.ValidationFindings.WithLabelValues(string(report.SeverityError)).Set(float64(rep.Errors()))
	metrics.ValidationFindings.WithLabelValues(string(report.SeverityWarning)).Set(float64(rep.Warnings()))
	respondJSON(w, http.StatusOK, rep)
}

// Scan runs the leaked-credential scan and returns the report.
func (s *Server) Scan(w http.ResponseWriter, r *http.Request) {
	f, err := s.keeper.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "env file does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, secrets.Scan(f, s.keeper.Registry()))
}

// Diff compares the managed file against the rendered template.
func (s *Server) Diff(w http.ResponseWriter, r *http.Request) {
	f, err := s.keeper.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, http.StatusNotFound, "env file does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"changes": f.Diff(s.keeper.Registry().Render()),
	})
}

// Preflight runs the Dockerfile/build-context checks.
func (s *Server) Preflight(w http.ResponseWriter, r *http.Request) {
	if s.dockerfile == "" {
		respondError(w, http.StatusNotFound, "no dockerfile configured")
		return
	}
	rep, err := preflight.Run(preflight.Options{
		Dockerfile: s.dockerfile,
		Context:    s.contextDir,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// Update regenerates the env file from the template. Query params: keep=1
// preserves filled-in values, no_backup=1 skips the backup.
func (s *Server) Update(w http.ResponseWriter, r *http.Request) {
	keep := boolParam(r, "keep")
	noBackup := boolParam(r, "no_backup")

	res, err := s.keeper.Update(noBackup, keep)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
