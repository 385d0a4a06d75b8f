package http

import (
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.tracker.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"categories": cats}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.tracker.AddCategory(r.Context(), body.Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(c).Write(w)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	body, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.tracker.RenameCategory(r.Context(), id, body.Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(c).Write(w)
}

// handleDeleteCategory answers 409 with the decision until ?confirm=true is
// sent for a category still referenced by expenses.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	d, err := s.tracker.DeleteCategory(r.Context(), id, ParseConfirm(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeDecision(w, d)
}
