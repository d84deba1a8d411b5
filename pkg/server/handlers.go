package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/engine"
	"stencil-hq/atrium/pkg/template/store"
	"stencil-hq/atrium/pkg/webctx"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	type item struct {
		*template.Template
		Detected template.Category `json:"detected_category"`
	}
	items := make([]item, 0, len(templates))
	for _, t := range templates {
		items = append(items, item{Template: t, Detected: engine.Classify(t)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": items})
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var t template.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := s.store.Create(r.Context(), &t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), template.ID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var t template.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = template.ID(chi.URLParam(r, "id"))
	if err := s.store.Update(r.Context(), &t); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": t.ID})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), template.ID(chi.URLParam(r, "id"))); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := s.store.Duplicate(r.Context(), template.ID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	category, err := s.resolver.Classify(r.Context(), template.ID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleResolve resolves a caller-supplied request context. Visitor fields
// absent from the payload are derived from the HTTP request itself, so a
// rendering layer can forward its inbound request headers wholesale.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	rctx, ok := decodeContext(w, r)
	if !ok {
		return
	}
	decision := s.resolver.Resolve(r.Context(), rctx)
	writeJSON(w, http.StatusOK, map[string]any{
		"decision": decision,
		"plan":     engine.Route(decision),
	})
}

func (s *Server) handleResolveLocation(w http.ResponseWriter, r *http.Request) {
	location := template.Category(chi.URLParam(r, "location"))
	if location != template.CategoryHeader && location != template.CategoryFooter {
		writeJSONError(w, http.StatusBadRequest, "location must be header or footer")
		return
	}
	rctx, ok := decodeContext(w, r)
	if !ok {
		return
	}
	id := s.resolver.ResolveForLocation(r.Context(), rctx, location)
	writeJSON(w, http.StatusOK, map[string]any{"template_id": id})
}

func decodeContext(w http.ResponseWriter, r *http.Request) (*template.RequestContext, bool) {
	var rctx template.RequestContext
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&rctx); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request context")
			return nil, false
		}
	}
	webctx.Enrich(&rctx, r)
	return &rctx, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "template not found")
	case errors.Is(err, store.ErrMissingTitle):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrReadOnly):
		writeJSONError(w, http.StatusMethodNotAllowed, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
