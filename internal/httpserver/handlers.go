package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	domain "supermarket/backend/internal/domain/product"
	"supermarket/backend/internal/logging"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON object")

func (s *Server) registerRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Post("/", s.handleCreateProduct)
		r.Get("/rules", s.handleRules)
		r.Get("/summary", s.handleSummary)
		r.Post("/check", s.handleCheckProduct)
		r.Get("/{id}", s.handleGetProduct)
		r.Put("/{id}", s.handleUpdateProduct)
		r.Patch("/{id}", s.handleUpdateProduct)
		r.Delete("/{id}", s.handleDeleteProduct)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := s.productService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	item, err := s.productService.Create(r.Context(), payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	item, err := s.productService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	item, err := s.productService.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.productService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckProduct answers whether a payload would currently be accepted,
// without storing it. ?exclude=<id> skips the record being edited.
func (s *Server) handleCheckProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	rej, err := s.productService.Check(r.Context(), payload, r.URL.Query().Get("exclude"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if rej != nil {
		writeRejection(w, rej)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Rules())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.productService.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (domain.Payload, bool) {
	var payload domain.Payload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&payload)
	if err == nil {
		if _, tokErr := dec.Token(); !errors.Is(tokErr, io.EOF) {
			err = errTrailingData
		}
	}
	if err != nil {
		logging.Warn(r.Context()).Err(err).Msg("invalid JSON payload")
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return domain.Payload{}, false
	}
	return payload, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var rej *domain.Rejection
	switch {
	case errors.As(err, &rej):
		writeRejection(w, rej)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	default:
		logging.Error(r.Context()).Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
