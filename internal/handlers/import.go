// internal/handlers/import.go
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/library-be/internal/workers"
)

// ImportHandler accepts catalog spreadsheets and queues them for the
// background import worker.
type ImportHandler struct {
	asynqClient *asynq.Client
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportBooks handles POST /api/v1/import/books
func (h *ImportHandler) ImportBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		h.respondError(w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	// Create upload directory if it doesn't exist
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename))
	dst, err := os.Create(tempFile)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to save file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	jobID := uuid.New().String()
	payload := workers.BookImportPayload{
		JobID:    jobID,
		FilePath: tempFile,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to marshal import payload",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	info, err := h.asynqClient.Enqueue(asynq.NewTask(workers.TypeBookImport, b),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to enqueue task",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "book import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("filename", header.Filename))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Book import has been queued for processing",
	})
}

func (h *ImportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ImportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
