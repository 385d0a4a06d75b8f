package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"spesa/internal/core"
)

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.tracker.ListMappings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"items": mappings}).Write(w)
}

// handleUpsertMapping maps the item in the path to the body's categoryId.
func (s *Server) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	item := ParsePathParam(r, "item")
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	if !body.Has("categoryId") {
		s.badRequest(w, r, errors.New("categoryId is required"))
		return
	}
	raw := body.Get("categoryId")
	categoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || categoryID <= 0 {
		s.badRequest(w, r, fmt.Errorf("invalid categoryId %q", raw))
		return
	}

	m, err := s.tracker.UpsertMapping(r.Context(), item, categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(m).Write(w)
}

func (s *Server) handleRemoveMapping(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.RemoveMapping(r.Context(), ParsePathParam(r, "item")); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	item := core.NormalizeItem(sanitizeInput(r.URL.Query().Get("item")))
	if item == "" {
		s.writeError(w, r, core.ErrEmptyItem)
		return
	}
	c, err := s.tracker.Classify(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(core.Mapping{Item: item, Category: c}).Write(w)
}
