// internal/handlers/export_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/library-be/internal/adapters/redis_adapter"
	"github.com/ammerola/library-be/internal/core/ports"
	"github.com/ammerola/library-be/internal/handlers"
	"github.com/ammerola/library-be/test/helpers"
	"github.com/ammerola/library-be/test/mocks"
)

// mockRows implements pgx.Rows over a fixed set of ledger rows
type mockRows struct {
	data   []handlers.BorrowExportRow
	index  int
	closed bool
}

func (m *mockRows) Close() {
	m.closed = true
}

func (m *mockRows) Err() error {
	return nil
}

func (m *mockRows) Next() bool {
	if m.index < len(m.data) {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...interface{}) error {
	if m.index == 0 || m.index > len(m.data) {
		return pgx.ErrNoRows
	}
	row := m.data[m.index-1]

	*dest[0].(*string) = row.BorrowID
	*dest[1].(*string) = row.UserName
	*dest[2].(*string) = row.UserEmail
	*dest[3].(*string) = row.Title
	*dest[4].(*string) = row.Author
	*dest[5].(**string) = row.CopyCode
	*dest[6].(**float64) = row.Price
	*dest[7].(*time.Time) = row.BorrowDate
	*dest[8].(*time.Time) = row.DueDate
	*dest[9].(**time.Time) = row.ReturnDate
	*dest[10].(*int) = row.RenewCount
	*dest[11].(**float64) = row.Fine
	*dest[12].(*string) = row.PaymentMethod
	*dest[13].(*string) = row.PaymentStatus
	*dest[14].(**float64) = row.PaymentAmount
	return nil
}

func (m *mockRows) Values() ([]interface{}, error) {
	return nil, nil
}

func (m *mockRows) RawValues() [][]byte {
	return nil
}

func (m *mockRows) Conn() *pgx.Conn {
	return nil
}

func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription {
	return []pgconn.FieldDescription{}
}

func (m *mockRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func createMockRows() pgx.Rows {
	copyCode := "7f3a9c-c001"
	price := 39.99
	now := time.Now()

	return &mockRows{
		data: []handlers.BorrowExportRow{
			{
				BorrowID:      "b1f6c9f4-0000-0000-0000-000000000001",
				UserName:      "Pat Reader",
				UserEmail:     "pat.reader@example.com",
				Title:         "The Go Programming Language",
				Author:        "Alan A. A. Donovan",
				CopyCode:      &copyCode,
				Price:         &price,
				BorrowDate:    now.AddDate(0, 0, -7),
				DueDate:       now.AddDate(0, 0, 7),
				RenewCount:    0,
				PaymentMethod: "cash",
				PaymentStatus: "unpaid",
			},
		},
	}
}

func TestExportHandler_ExportJSON(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		setupMocks     func(*mocks.MockDatabase)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:        "exports_json_with_default_params",
			queryParams: map[string]string{},
			setupMocks: func(db *mocks.MockDatabase) {
				db.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(createMockRows(), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.JSONExportResponse
				err := json.Unmarshal(body, &response)
				require.NoError(t, err)
				assert.Len(t, response.Borrows, 1)
				assert.Equal(t, 1, response.Metadata.TotalRows)
				assert.Equal(t, "Pat Reader", response.Borrows[0]["user_name"])
			},
		},
		{
			name:        "open_only_filter_reaches_query",
			queryParams: map[string]string{"open_only": "true"},
			setupMocks: func(db *mocks.MockDatabase) {
				db.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
						assert.Contains(t, sql, "return_date IS NULL")
						return createMockRows(), nil
					})
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response handlers.JSONExportResponse
				require.NoError(t, json.Unmarshal(body, &response))
				assert.True(t, response.Metadata.OpenOnly)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := mocks.NewMockDatabase(ctrl)
			cache := newTestCacheMock()
			logger := helpers.TestLogger()

			handler := handlers.NewExportHandler(mockDB, cache, logger)

			tt.setupMocks(mockDB)

			req := httptest.NewRequest("GET", "/api/v1/export/json", nil)
			if len(tt.queryParams) > 0 {
				q := req.URL.Query()
				for k, v := range tt.queryParams {
					q.Add(k, v)
				}
				req.URL.RawQuery = q.Encode()
			}
			w := httptest.NewRecorder()

			handler.ExportJSON(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestExportHandler_ExportExcel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mocks.NewMockDatabase(ctrl)
	cache := newTestCacheMock()
	logger := helpers.TestLogger()

	handler := handlers.NewExportHandler(mockDB, cache, logger)

	mockDB.EXPECT().
		Query(gomock.Any(), gomock.Any()).
		Return(createMockRows(), nil)

	req := httptest.NewRequest("GET", "/api/v1/export/excel", nil)
	w := httptest.NewRecorder()

	handler.ExportExcel(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "borrow_ledger_")
	assert.NotEmpty(t, w.Body.Bytes())
}

// testCacheMock implements ports.CacheRepository in memory so export
// tests do not race the async cache write against controller teardown.
type testCacheMock struct {
	mu       sync.RWMutex
	data     map[string][]byte
	ttls     map[string]time.Time
	counters map[string]int64
}

var _ ports.CacheRepository = (*testCacheMock)(nil)

func newTestCacheMock() *testCacheMock {
	return &testCacheMock{
		data:     make(map[string][]byte),
		ttls:     make(map[string]time.Time),
		counters: make(map[string]int64),
	}
}

func (m *testCacheMock) Set(ctx context.Context, key string, value interface{}) error {
	return m.SetWithTTL(ctx, key, value, time.Hour)
}

func (m *testCacheMock) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.data[key] = data
	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	}

	return nil
}

func (m *testCacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.data[key]
	if !exists {
		return redis_a.ErrCacheMiss
	}

	if expiry, hasTTL := m.ttls[key]; hasTTL && time.Now().After(expiry) {
		return redis_a.ErrCacheMiss
	}

	return json.Unmarshal(data, dest)
}

func (m *testCacheMock) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		delete(m.ttls, key)
		delete(m.counters, key)
	}

	return nil
}

func (m *testCacheMock) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keysToDelete []string
	for key := range m.data {
		if pattern == "*" || key == pattern {
			keysToDelete = append(keysToDelete, key)
		}
	}

	for _, key := range keysToDelete {
		delete(m.data, key)
		delete(m.ttls, key)
		delete(m.counters, key)
	}

	return nil
}

func (m *testCacheMock) Exists(ctx context.Context, keys ...string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, key := range keys {
		if _, exists := m.data[key]; !exists {
			return false, nil
		}
		if expiry, hasTTL := m.ttls[key]; hasTTL && time.Now().After(expiry) {
			return false, nil
		}
	}

	return true, nil
}

func (m *testCacheMock) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		return nil
	}

	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	} else {
		delete(m.ttls, key)
	}

	return nil
}

func (m *testCacheMock) GetOrSet(ctx context.Context, key string, dest interface{},
	fetch func() (interface{}, error), ttl time.Duration) error {

	err := m.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != redis_a.ErrCacheMiss {
		return err
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	if err := m.SetWithTTL(ctx, key, value, ttl); err != nil {
		return err
	}

	data, _ := json.Marshal(value)
	return json.Unmarshal(data, dest)
}

func (m *testCacheMock) Increment(ctx context.Context, key string) (int64, error) {
	return m.IncrementBy(ctx, key, 1)
}

func (m *testCacheMock) IncrementBy(ctx context.Context, key string, value int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[key] += value
	return m.counters[key], nil
}

func (m *testCacheMock) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; exists {
		if expiry, hasTTL := m.ttls[key]; !hasTTL || time.Now().Before(expiry) {
			return false, nil
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	m.data[key] = data
	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	}

	return true, nil
}

func (m *testCacheMock) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.data[key]; !exists {
		return -2 * time.Second, nil
	}

	expiry, hasTTL := m.ttls[key]
	if !hasTTL {
		return -1 * time.Second, nil
	}

	remaining := time.Until(expiry)
	if remaining <= 0 {
		return -2 * time.Second, nil
	}

	return remaining, nil
}

func (m *testCacheMock) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	m.ttls = make(map[string]time.Time)
	m.counters = make(map[string]int64)

	return nil
}

func (m *testCacheMock) Ping(ctx context.Context) error {
	return nil
}
