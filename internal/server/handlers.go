package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/relock"
)

// relockRequest is the POST /v1/relock body.
type relockRequest struct {
	Previous       *lockfile.Snapshot `json:"previous"`
	Current        *lockfile.Snapshot `json:"current"`
	ProjectModules []string           `json:"projectModules,omitempty"`
	Refresh        bool               `json:"refresh,omitempty"`
}

// bootstrapRequest is the POST /v1/bootstrap body.
type bootstrapRequest struct {
	Current *lockfile.Snapshot `json:"current"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) handleRelock(w http.ResponseWriter, r *http.Request) {
	var req relockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}

	result, err := s.runner.Relock(r.Context(), relock.Options{
		Previous:       req.Previous,
		Current:        req.Current,
		ProjectModules: req.ProjectModules,
		Refresh:        req.Refresh,
		Logger:         s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if result.CacheInfo.Hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(result.Output)
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}

	result, err := s.runner.Bootstrap(r.Context(), req.Current, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(result.Output)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "snapshot store not configured"))
		return
	}
	projects, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []string{}
	}
	s.writeJSON(w, map[string][]string{"projects": projects})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "snapshot store not configured"))
		return
	}
	project := chi.URLParam(r, "*")
	snap, err := s.store.Get(r.Context(), project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = lockfile.Write(snap, w)
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "snapshot store not configured"))
		return
	}
	project := chi.URLParam(r, "*")
	snap, err := lockfile.ReadSnapshot(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Set(r.Context(), project, snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "snapshot store not configured"))
		return
	}
	project := chi.URLParam(r, "*")
	if err := s.store.Delete(r.Context(), project); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(errors.GetCode(err))
	s.logger.Error("request failed",
		"path", r.URL.Path,
		"status", status,
		"request_id", RequestID(r.Context()),
		"err", err)

	var body errorBody
	body.Error.Code = string(errors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(errors.ErrCodeInternal)
	}
	body.Error.Message = errors.UserMessage(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLockfile, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidPattern, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMissingModule, errors.ErrCodeUnresolvablePath:
		// Structurally inconsistent input documents
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
