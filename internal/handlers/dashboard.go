// internal/handlers/dashboard.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ammerola/library-be/internal/adapters/db"
	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/core/ports"
)

// DashboardHandler serves aggregate catalog and circulation statistics
type DashboardHandler struct {
	db     *db.Database
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *db.Database, cache ports.CacheRepository, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		db:     db,
		cache:  cache,
		logger: logger.With(slog.String("handler", "dashboard")),
	}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Try cache first
	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	var dashboard DashboardData

	err := h.cache.GetOrSet(ctx, cacheKey, &dashboard, func() (interface{}, error) {
		return h.loadDashboardData(ctx)
	}, 5*time.Minute)

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load dashboard",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	h.respondJSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) loadDashboardData(ctx context.Context) (*DashboardData, error) {
	dashboard := &DashboardData{
		Timestamp: time.Now(),
	}

	// Headline counters off the aggregate columns; the borrow counts
	// come from the ledger directly.
	summaryQuery := `
		SELECT
			(SELECT COUNT(*) FROM books WHERE is_deleted = FALSE) AS total_books,
			(SELECT COALESCE(SUM(total_copies), 0) FROM books WHERE is_deleted = FALSE) AS total_copies,
			(SELECT COALESCE(SUM(total_copies - quantity), 0) FROM books WHERE is_deleted = FALSE) AS copies_on_loan,
			(SELECT COUNT(*) FROM borrows WHERE return_date IS NULL) AS open_borrows,
			(SELECT COUNT(*) FROM borrows WHERE return_date IS NULL AND due_date < NOW()) AS overdue_borrows,
			(SELECT COALESCE(SUM(fine), 0) FROM borrows WHERE payment_status = 'paid') AS fines_collected
	`

	err := h.db.QueryRow(ctx, summaryQuery).Scan(
		&dashboard.Summary.TotalBooks,
		&dashboard.Summary.TotalCopies,
		&dashboard.Summary.CopiesOnLoan,
		&dashboard.Summary.OpenBorrows,
		&dashboard.Summary.OverdueBorrows,
		&dashboard.Summary.FinesCollected,
	)
	if err != nil {
		return nil, err
	}

	// Load loan breakdown by category
	categoryQuery := `
		SELECT
			COALESCE(NULLIF(bk.category, ''), 'uncategorized') AS category,
			COUNT(*) AS borrows
		FROM borrows b
		JOIN books bk ON bk.id = b.book_id
		GROUP BY 1
		ORDER BY borrows DESC
		LIMIT 10
	`

	rows, err := h.db.Query(ctx, categoryQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cat CategoryBreakdown
		if err := rows.Scan(&cat.Category, &cat.Borrows); err != nil {
			continue
		}
		dashboard.CategoryBreakdown = append(dashboard.CategoryBreakdown, cat)
	}

	// Load most-borrowed titles
	titleQuery := `
		SELECT bk.title, bk.author, COUNT(*) AS borrows
		FROM borrows b
		JOIN books bk ON bk.id = b.book_id
		GROUP BY bk.id, bk.title, bk.author
		ORDER BY borrows DESC
		LIMIT 10
	`

	titleRows, err := h.db.Query(ctx, titleQuery)
	if err == nil {
		defer titleRows.Close()
		for titleRows.Next() {
			var top TopTitle
			if err := titleRows.Scan(&top.Title, &top.Author, &top.Borrows); err == nil {
				dashboard.TopTitles = append(dashboard.TopTitles, top)
			}
		}
	}

	return dashboard, nil
}

// Type definitions

type DashboardData struct {
	Summary           DashboardSummary    `json:"summary"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	TopTitles         []TopTitle          `json:"top_titles"`
	Timestamp         time.Time           `json:"timestamp"`
}

type DashboardSummary struct {
	TotalBooks     int64           `json:"total_books"`
	TotalCopies    int64           `json:"total_copies"`
	CopiesOnLoan   int64           `json:"copies_on_loan"`
	OpenBorrows    int64           `json:"open_borrows"`
	OverdueBorrows int64           `json:"overdue_borrows"`
	FinesCollected decimal.Decimal `json:"fines_collected"`
}

type CategoryBreakdown struct {
	Category string `json:"category"`
	Borrows  int64  `json:"borrows"`
}

type TopTitle struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Borrows int64  `json:"borrows"`
}

// Helper methods

func (h *DashboardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DashboardHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
