package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/middleware/trace"
	"spesa/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports 503 until the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.tracker.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, log.ErrorTypeDatabase, "store unavailable").
			WithRequestID(trace.GetRequestID(r.Context())).
			Write(w)
		return
	}
	NewJSONResponse().Data(struct {
		Status  string  `json:"status"`
		Metrics Metrics `json:"metrics"`
	}{Status: "ready", Metrics: s.Metrics()}).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").
		WithRequestID(trace.GetRequestID(r.Context())).
		Write(w)
}

// writeError maps tracker errors onto status codes. Storage failures are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := trace.GetRequestID(r.Context())
	var resp *JSONResponseBuilder
	switch {
	case services.IsValidation(err):
		resp = UnprocessableEntityError(err.Error())
	case services.IsNotFound(err):
		resp = NotFoundError(err.Error())
	case errors.Is(err, core.ErrReservedCategory):
		resp = ErrorResponse(http.StatusConflict, log.ErrorTypeConflict, err.Error())
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, r.Method+" "+r.URL.Path, log.NewFields())
		resp = InternalServerError("internal error")
	}
	resp.WithRequestID(requestID).Write(w)
}

// writeDecision answers 409 with the decision body when confirmation is
// needed and 204 once the change is done.
func writeDecision(w http.ResponseWriter, d services.Decision) {
	if d.NeedsConfirmation() {
		NewJSONResponse().Status(http.StatusConflict).Data(d).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// parseBody reads the request body, writing a 400 on failure.
func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("malformed request body").
			WithRequestID(trace.GetRequestID(r.Context())).
			Write(w)
		return nil, false
	}
	return p, true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	BadRequestError(err.Error()).WithRequestID(trace.GetRequestID(r.Context())).Write(w)
}
