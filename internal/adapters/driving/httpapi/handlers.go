package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/logger"
)

// defaultMaxUploadBytes bounds uploads when config leaves it unset.
// Slightly above the ingest limit so the pipeline produces the
// user-facing size error instead of a blunt 413.
const defaultMaxUploadBytes = 64 << 20

// chatRequest is the /api/v1/chat request body.
type chatRequest struct {
	Question string `json:"question"`
	TopK     *int   `json:"top_k,omitempty"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse is the /health body.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: s.cfg.ServiceName,
		Version: s.cfg.ServiceVersion,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	maxBytes := s.cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, &domain.ValidationError{Reason: "multipart field \"file\" is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, &domain.ValidationError{Reason: "failed to read uploaded file"})
		return
	}

	receipt, err := s.ingestor.Ingest(ctx, header.Filename, data)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	fileID := mux.Vars(r)["file_id"]
	filename := r.URL.Query().Get("filename")

	if err := s.ingestor.Remove(ctx, fileID, filename); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"file_id": fileID,
		"status":  "deleted",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &domain.ValidationError{Reason: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, &domain.ValidationError{Reason: "question must not be empty"})
		return
	}

	topK := 0
	if req.TopK != nil {
		if *req.TopK <= 0 {
			s.writeError(w, &domain.ValidationError{Reason: "top_k must be positive"})
			return
		}
		topK = *req.TopK
	}

	answer, err := s.answerer.Answer(ctx, req.Question, topK)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// writeError maps domain errors to status codes. Client-caused
// failures are 400; everything else is 500 with a safe message unless
// debug mode is on.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) || errors.Is(err, domain.ErrUnsupportedFormat) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	logger.Error("request failed: %v", err)

	msg := "internal server error"
	if s.cfg.Debug {
		msg = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response: %v", err)
	}
}
