// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/core/ports"
)

// ExportParams defines parameters for ledger export operations
type ExportParams struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	OpenOnly bool       `json:"open_only"`
	Format   string     `json:"format"`
}

// BorrowExportRow is one line of the borrow ledger export, joined with
// the book it refers to.
type BorrowExportRow struct {
	BorrowID      string
	UserName      string
	UserEmail     string
	Title         string
	Author        string
	CopyCode      *string
	Price         *float64
	BorrowDate    time.Time
	DueDate       time.Time
	ReturnDate    *time.Time
	RenewCount    int
	Fine          *float64
	PaymentMethod string
	PaymentStatus string
	PaymentAmount *float64
}

// JSONExportResponse represents the JSON export response structure
type JSONExportResponse struct {
	Borrows  []map[string]any `json:"borrows"`
	Metadata ExportMetadata   `json:"metadata"`
}

// ExportMetadata contains metadata about the export
type ExportMetadata struct {
	ExportDate time.Time  `json:"export_date"`
	TotalRows  int        `json:"total_rows"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	OpenOnly   bool       `json:"open_only"`
}

// ExportHandler handles borrow ledger export operations
type ExportHandler struct {
	db     ports.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(db ports.Database, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "export")),
	}
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	h.logger.InfoContext(ctx, "starting ledger export",
		slog.Bool("open_only", params.OpenOnly))

	data, err := h.getLedgerData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve ledger data", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("borrow_ledger_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response", slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "ledger export completed",
		slog.Int("total_rows", len(data)),
		slog.String("filename", filename))
}

// ExportJSON handles GET /api/v1/export/json
func (h *ExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	// Check cache first
	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "json", h.getCacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response", slog.String("error", err.Error()))
		}
		return
	}

	data, err := h.getLedgerData(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to retrieve ledger data", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	jsonData := make([]map[string]any, 0, len(data))
	for i := range data {
		jsonData = append(jsonData, h.rowToJSONMap(&data[i]))
	}

	response := JSONExportResponse{
		Borrows: jsonData,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			TotalRows:  len(jsonData),
			DateFrom:   params.DateFrom,
			DateTo:     params.DateTo,
			OpenOnly:   params.OpenOnly,
		},
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal JSON response", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response", slog.String("error", err.Error()))
		return
	}

	// Cache the result async so a slow Redis never delays the response
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.Set(cacheCtx, cacheKey, responseData); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON response", slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(data)))
}

// Helper methods

// parseExportParams parses and validates export parameters from the request
func (h *ExportHandler) parseExportParams(r *http.Request) *ExportParams {
	params := &ExportParams{}

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.DateFrom = &t
		}
	}

	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.DateTo = &t
		}
	}

	params.OpenOnly = r.URL.Query().Get("open_only") == "true"

	params.Format = r.URL.Query().Get("format")
	if params.Format == "" {
		params.Format = "xlsx"
	}

	return params
}

// getLedgerData retrieves borrow rows joined with book details
func (h *ExportHandler) getLedgerData(ctx context.Context, params *ExportParams) ([]BorrowExportRow, error) {
	query, args := h.buildExportQuery(params)

	rows, err := h.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query borrow ledger: %w", err)
	}
	defer rows.Close()

	var data []BorrowExportRow
	for rows.Next() {
		var row BorrowExportRow
		err := rows.Scan(
			&row.BorrowID, &row.UserName, &row.UserEmail,
			&row.Title, &row.Author, &row.CopyCode,
			&row.Price, &row.BorrowDate, &row.DueDate, &row.ReturnDate,
			&row.RenewCount, &row.Fine,
			&row.PaymentMethod, &row.PaymentStatus, &row.PaymentAmount,
		)
		if err != nil {
			h.logger.WarnContext(ctx, "failed to scan ledger row", slog.String("error", err.Error()))
			continue
		}
		data = append(data, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}

	return data, nil
}

// buildExportQuery constructs the SQL query based on export parameters
func (h *ExportHandler) buildExportQuery(params *ExportParams) (string, []any) {
	query := `
		SELECT
			b.id::text, b.user_name, b.user_email,
			bk.title, bk.author, b.copy_code,
			b.price::float8, b.borrow_date, b.due_date, b.return_date,
			b.renew_count, b.fine::float8,
			b.payment_method, b.payment_status, b.payment_amount::float8
		FROM borrows b
		JOIN books bk ON bk.id = b.book_id
		WHERE 1=1`

	var args []any
	if params.DateFrom != nil {
		args = append(args, *params.DateFrom)
		query += fmt.Sprintf(" AND b.borrow_date >= $%d", len(args))
	}
	if params.DateTo != nil {
		args = append(args, *params.DateTo)
		query += fmt.Sprintf(" AND b.borrow_date <= $%d", len(args))
	}
	if params.OpenOnly {
		query += " AND b.return_date IS NULL"
	}

	query += " ORDER BY b.borrow_date DESC"
	return query, args
}

// generateExcelFile creates an Excel file in memory from the ledger rows
func (h *ExportHandler) generateExcelFile(data []BorrowExportRow) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Borrows")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"Borrow ID", "Borrower", "Email", "Title", "Author", "Copy Code",
		"Price", "Borrow Date", "Due Date", "Return Date", "Renewals",
		"Fine", "Payment Method", "Payment Status", "Payment Amount",
	}

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for i := range data {
		dataRow := sheet.AddRow()
		for _, value := range h.rowToExcelValues(&data[i]) {
			cell := dataRow.AddCell()
			cell.Value = value
		}
	}

	for i := 0; i < len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

// rowToExcelValues converts a ledger row to Excel cell values
func (h *ExportHandler) rowToExcelValues(row *BorrowExportRow) []string {
	return []string{
		row.BorrowID,
		row.UserName,
		row.UserEmail,
		row.Title,
		row.Author,
		h.safeStringValue(row.CopyCode),
		h.safeFloatValue(row.Price),
		row.BorrowDate.Format("2006-01-02"),
		row.DueDate.Format("2006-01-02"),
		h.safeDateValue(row.ReturnDate),
		strconv.Itoa(row.RenewCount),
		h.safeFloatValue(row.Fine),
		row.PaymentMethod,
		row.PaymentStatus,
		h.safeFloatValue(row.PaymentAmount),
	}
}

// rowToJSONMap converts a ledger row to a JSON-friendly map
func (h *ExportHandler) rowToJSONMap(row *BorrowExportRow) map[string]any {
	return map[string]any{
		"borrow_id":      row.BorrowID,
		"user_name":      row.UserName,
		"user_email":     row.UserEmail,
		"title":          row.Title,
		"author":         row.Author,
		"copy_code":      row.CopyCode,
		"price":          row.Price,
		"borrow_date":    row.BorrowDate,
		"due_date":       row.DueDate,
		"return_date":    row.ReturnDate,
		"renew_count":    row.RenewCount,
		"fine":           row.Fine,
		"payment_method": row.PaymentMethod,
		"payment_status": row.PaymentStatus,
		"payment_amount": row.PaymentAmount,
	}
}

// Utility methods for safe value conversion

func (h *ExportHandler) safeStringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (h *ExportHandler) safeFloatValue(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func (h *ExportHandler) safeDateValue(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}

func (h *ExportHandler) getCacheKeyFromParams(params *ExportParams) string {
	key := fmt.Sprintf("open_%t", params.OpenOnly)
	if params.DateFrom != nil {
		key += fmt.Sprintf("_from_%s", params.DateFrom.Format("20060102"))
	}
	if params.DateTo != nil {
		key += fmt.Sprintf("_to_%s", params.DateTo.Format("20060102"))
	}
	if !strings.EqualFold(params.Format, "xlsx") {
		key += "_" + params.Format
	}
	return key
}

func (h *ExportHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{
		"error":   message,
		"status":  "error",
		"message": message,
	}

	json.NewEncoder(w).Encode(response)
}
