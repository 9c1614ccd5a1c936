// internal/handlers/catalog.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/core/ports"
)

// CatalogHandler handles book and copy administration endpoints
type CatalogHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// GetBook handles GET /api/v1/books/{id}
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	book, err := h.service.GetBook(ctx, bookID)
	if err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get book",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve book")
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// ListBooks handles GET /api/v1/books
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := h.parseBookQuery(r)

	page, err := h.service.ListBooks(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list books",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list books")
		return
	}

	h.respondJSON(w, http.StatusOK, page)
}

// CreateBook handles POST /api/v1/books
func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	book := req.ToDomain()

	if err := h.service.CreateBook(ctx, book); err != nil {
		h.logger.ErrorContext(ctx, "failed to create book",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create book")
		return
	}

	// Register initial physical copies in the same request when asked
	if req.InitialCopies > 0 {
		if _, err := h.service.AddCopies(ctx, book.ID, req.InitialCopies); err != nil {
			h.logger.ErrorContext(ctx, "failed to register initial copies",
				slog.String("book_id", book.ID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Book created but copies could not be registered")
			return
		}
		var err error
		book, err = h.service.GetBook(ctx, book.ID)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, "Failed to retrieve created book")
			return
		}
	}

	h.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID.String()),
		slog.String("title", book.Title))

	h.respondJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /api/v1/books/{id}
func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateBook(ctx, bookID, req.ToDomain()); err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update book",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to update book")
		return
	}

	book, err := h.service.GetBook(ctx, bookID)
	if err != nil {
		h.respondJSON(w, http.StatusOK, map[string]string{"message": "Book updated successfully"})
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/v1/books/{id}
func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	if err := h.service.SoftDeleteBook(ctx, bookID); err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, domain.ErrCopiesOutstanding):
			h.respondError(w, http.StatusConflict, "Book has copies on loan and cannot be deleted")
		default:
			h.logger.ErrorContext(ctx, "failed to delete book",
				slog.String("book_id", bookID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to delete book")
		}
		return
	}

	h.logger.InfoContext(ctx, "book deleted", slog.String("book_id", bookID.String()))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Book deleted successfully",
		"book_id": bookID.String(),
	})
}

// RestoreBook handles POST /api/v1/books/{id}/restore
func (h *CatalogHandler) RestoreBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	if err := h.service.RestoreBook(ctx, bookID); err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to restore book",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to restore book")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Book restored successfully",
		"book_id": bookID.String(),
	})
}

// UploadCover handles POST /api/v1/books/{id}/cover
func (h *CatalogHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Cover file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		h.respondError(w, http.StatusBadRequest, "Cover must be a JPEG, PNG or WebP image")
		return
	}

	url, err := h.service.UploadCover(ctx, bookID, contentType, file)
	if err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to upload cover",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to upload cover")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"book_id":   bookID.String(),
		"cover_url": url,
	})
}

// AddCopies handles POST /api/v1/books/{id}/copies
func (h *CatalogHandler) AddCopies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	var req AddCopiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	copies, err := h.service.AddCopies(ctx, bookID, req.Count)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Book not found")
		case errors.Is(err, domain.ErrBookDeleted):
			h.respondError(w, http.StatusConflict, "Book is deleted")
		default:
			h.logger.ErrorContext(ctx, "failed to add copies",
				slog.String("book_id", bookID.String()),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to add copies")
		}
		return
	}

	h.logger.InfoContext(ctx, "copies registered",
		slog.String("book_id", bookID.String()),
		slog.Int("count", len(copies)))

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"book_id": bookID.String(),
		"copies":  copies,
	})
}

// ListCopies handles GET /api/v1/books/{id}/copies
func (h *CatalogHandler) ListCopies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid book ID format")
		return
	}

	copies, err := h.service.ListCopies(ctx, bookID)
	if err != nil {
		if domain.IsNotFound(err) {
			h.respondError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to list copies",
			slog.String("book_id", bookID.String()),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list copies")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"book_id": bookID.String(),
		"copies":  copies,
	})
}

// UpdateCopy handles PATCH /api/v1/copies/{id} with an action verb:
// lost, retire or remove.
func (h *CatalogHandler) UpdateCopy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	copyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid copy ID format")
		return
	}

	var req CopyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "lost":
		err = h.service.MarkCopyLost(ctx, copyID)
	case "retire":
		err = h.service.RetireCopy(ctx, copyID)
	case "remove":
		err = h.service.RemoveCopy(ctx, copyID)
	default:
		h.respondError(w, http.StatusBadRequest, "Action must be one of: lost, retire, remove")
		return
	}

	if err != nil {
		switch {
		case domain.IsNotFound(err):
			h.respondError(w, http.StatusNotFound, "Copy not found")
		case errors.Is(err, domain.ErrCopyNotAvailable):
			h.respondError(w, http.StatusConflict, "Copy is on loan or already withdrawn")
		default:
			h.logger.ErrorContext(ctx, "failed to update copy",
				slog.String("copy_id", copyID.String()),
				slog.String("action", req.Action),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to update copy")
		}
		return
	}

	h.logger.InfoContext(ctx, "copy updated",
		slog.String("copy_id", copyID.String()),
		slog.String("action", req.Action))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"copy_id": copyID.String(),
		"action":  req.Action,
	})
}

// parseBookQuery parses query parameters for listing books
func (h *CatalogHandler) parseBookQuery(r *http.Request) ports.BookQuery {
	q := ports.BookQuery{
		Page:      1,
		PageSize:  50,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			q.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 100 {
				q.PageSize = 100
			} else {
				q.PageSize = l
			}
		}
	}

	q.Search = r.URL.Query().Get("search")
	q.Category = r.URL.Query().Get("category")
	q.Author = r.URL.Query().Get("author")

	if available := r.URL.Query().Get("available"); available != "" {
		if val, err := strconv.ParseBool(available); err == nil {
			q.Available = &val
		}
	}

	if deleted := r.URL.Query().Get("include_deleted"); deleted == "true" {
		q.IncludeDeleted = true
	}

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		q.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		q.SortOrder = order
	}

	return q
}

// Helper methods

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CatalogHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// CreateBookRequest represents the request body for creating a book
type CreateBookRequest struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Description   string          `json:"description,omitempty"`
	ISBN          string          `json:"isbn,omitempty"`
	Publisher     string          `json:"publisher,omitempty"`
	PublishYear   int             `json:"publish_year,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	InitialCopies int             `json:"initial_copies,omitempty"`
}

// Validate validates the create book request
func (r *CreateBookRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Author == "" {
		return fmt.Errorf("author is required")
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if r.InitialCopies < 0 {
		return fmt.Errorf("initial_copies cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *CreateBookRequest) ToDomain() *domain.Book {
	return &domain.Book{
		ID:          uuid.New(),
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		Category:    r.Category,
		Price:       r.Price,
	}
}

// UpdateBookRequest represents the request body for updating a book.
// Inventory counters are absent on purpose: they move only through
// copy and borrow operations.
type UpdateBookRequest struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description,omitempty"`
	ISBN        string          `json:"isbn,omitempty"`
	Publisher   string          `json:"publisher,omitempty"`
	PublishYear int             `json:"publish_year,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Validate validates the update book request
func (r *UpdateBookRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.Author == "" {
		return fmt.Errorf("author is required")
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *UpdateBookRequest) ToDomain() *domain.Book {
	return &domain.Book{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		ISBN:        r.ISBN,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		Category:    r.Category,
		Price:       r.Price,
	}
}

// AddCopiesRequest represents the request body for registering copies
type AddCopiesRequest struct {
	Count int `json:"count"`
}

// CopyActionRequest carries the state transition for a single copy
type CopyActionRequest struct {
	Action string `json:"action"`
}
