// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/services.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/services.go -destination=services_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	io "io"
	reflect "reflect"

	domain "github.com/ammerola/library-be/internal/core/domain"
	ports "github.com/ammerola/library-be/internal/core/ports"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockCatalogService is a mock of CatalogService interface.
type MockCatalogService struct {
	ctrl     *gomock.Controller
	recorder *MockCatalogServiceMockRecorder
	isgomock struct{}
}

// MockCatalogServiceMockRecorder is the mock recorder for MockCatalogService.
type MockCatalogServiceMockRecorder struct {
	mock *MockCatalogService
}

// NewMockCatalogService creates a new mock instance.
func NewMockCatalogService(ctrl *gomock.Controller) *MockCatalogService {
	mock := &MockCatalogService{ctrl: ctrl}
	mock.recorder = &MockCatalogServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCatalogService) EXPECT() *MockCatalogServiceMockRecorder {
	return m.recorder
}

// AddCopies mocks base method.
func (m *MockCatalogService) AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddCopies", ctx, bookID, n)
	ret0, _ := ret[0].([]domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AddCopies indicates an expected call of AddCopies.
func (mr *MockCatalogServiceMockRecorder) AddCopies(ctx, bookID, n any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddCopies", reflect.TypeOf((*MockCatalogService)(nil).AddCopies), ctx, bookID, n)
}

// CreateBook mocks base method.
func (m *MockCatalogService) CreateBook(ctx context.Context, book *domain.Book) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateBook", ctx, book)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateBook indicates an expected call of CreateBook.
func (mr *MockCatalogServiceMockRecorder) CreateBook(ctx, book any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateBook", reflect.TypeOf((*MockCatalogService)(nil).CreateBook), ctx, book)
}

// GetBook mocks base method.
func (m *MockCatalogService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBook", ctx, id)
	ret0, _ := ret[0].(*domain.Book)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBook indicates an expected call of GetBook.
func (mr *MockCatalogServiceMockRecorder) GetBook(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBook", reflect.TypeOf((*MockCatalogService)(nil).GetBook), ctx, id)
}

// ListBooks mocks base method.
func (m *MockCatalogService) ListBooks(ctx context.Context, q ports.BookQuery) (*ports.BookPage, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListBooks", ctx, q)
	ret0, _ := ret[0].(*ports.BookPage)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListBooks indicates an expected call of ListBooks.
func (mr *MockCatalogServiceMockRecorder) ListBooks(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListBooks", reflect.TypeOf((*MockCatalogService)(nil).ListBooks), ctx, q)
}

// ListCopies mocks base method.
func (m *MockCatalogService) ListCopies(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListCopies", ctx, bookID)
	ret0, _ := ret[0].([]domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListCopies indicates an expected call of ListCopies.
func (mr *MockCatalogServiceMockRecorder) ListCopies(ctx, bookID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListCopies", reflect.TypeOf((*MockCatalogService)(nil).ListCopies), ctx, bookID)
}

// MarkCopyLost mocks base method.
func (m *MockCatalogService) MarkCopyLost(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkCopyLost", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkCopyLost indicates an expected call of MarkCopyLost.
func (mr *MockCatalogServiceMockRecorder) MarkCopyLost(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkCopyLost", reflect.TypeOf((*MockCatalogService)(nil).MarkCopyLost), ctx, copyID)
}

// RemoveCopy mocks base method.
func (m *MockCatalogService) RemoveCopy(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RemoveCopy", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// RemoveCopy indicates an expected call of RemoveCopy.
func (mr *MockCatalogServiceMockRecorder) RemoveCopy(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveCopy", reflect.TypeOf((*MockCatalogService)(nil).RemoveCopy), ctx, copyID)
}

// RestoreBook mocks base method.
func (m *MockCatalogService) RestoreBook(ctx context.Context, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RestoreBook", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// RestoreBook indicates an expected call of RestoreBook.
func (mr *MockCatalogServiceMockRecorder) RestoreBook(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RestoreBook", reflect.TypeOf((*MockCatalogService)(nil).RestoreBook), ctx, id)
}

// RetireCopy mocks base method.
func (m *MockCatalogService) RetireCopy(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RetireCopy", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// RetireCopy indicates an expected call of RetireCopy.
func (mr *MockCatalogServiceMockRecorder) RetireCopy(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RetireCopy", reflect.TypeOf((*MockCatalogService)(nil).RetireCopy), ctx, copyID)
}

// SoftDeleteBook mocks base method.
func (m *MockCatalogService) SoftDeleteBook(ctx context.Context, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SoftDeleteBook", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// SoftDeleteBook indicates an expected call of SoftDeleteBook.
func (mr *MockCatalogServiceMockRecorder) SoftDeleteBook(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SoftDeleteBook", reflect.TypeOf((*MockCatalogService)(nil).SoftDeleteBook), ctx, id)
}

// UpdateBook mocks base method.
func (m *MockCatalogService) UpdateBook(ctx context.Context, id uuid.UUID, book *domain.Book) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateBook", ctx, id, book)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateBook indicates an expected call of UpdateBook.
func (mr *MockCatalogServiceMockRecorder) UpdateBook(ctx, id, book any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateBook", reflect.TypeOf((*MockCatalogService)(nil).UpdateBook), ctx, id, book)
}

// UploadCover mocks base method.
func (m *MockCatalogService) UploadCover(ctx context.Context, bookID uuid.UUID, contentType string, body io.Reader) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UploadCover", ctx, bookID, contentType, body)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UploadCover indicates an expected call of UploadCover.
func (mr *MockCatalogServiceMockRecorder) UploadCover(ctx, bookID, contentType, body any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UploadCover", reflect.TypeOf((*MockCatalogService)(nil).UploadCover), ctx, bookID, contentType, body)
}

// MockCirculationService is a mock of CirculationService interface.
type MockCirculationService struct {
	ctrl     *gomock.Controller
	recorder *MockCirculationServiceMockRecorder
	isgomock struct{}
}

// MockCirculationServiceMockRecorder is the mock recorder for MockCirculationService.
type MockCirculationServiceMockRecorder struct {
	mock *MockCirculationService
}

// NewMockCirculationService creates a new mock instance.
func NewMockCirculationService(ctrl *gomock.Controller) *MockCirculationService {
	mock := &MockCirculationService{ctrl: ctrl}
	mock.recorder = &MockCirculationServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCirculationService) EXPECT() *MockCirculationServiceMockRecorder {
	return m.recorder
}

// Borrow mocks base method.
func (m *MockCirculationService) Borrow(ctx context.Context, req ports.BorrowRequest) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Borrow", ctx, req)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Borrow indicates an expected call of Borrow.
func (mr *MockCirculationServiceMockRecorder) Borrow(ctx, req any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Borrow", reflect.TypeOf((*MockCirculationService)(nil).Borrow), ctx, req)
}

// GetBorrow mocks base method.
func (m *MockCirculationService) GetBorrow(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBorrow", ctx, borrowID)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBorrow indicates an expected call of GetBorrow.
func (mr *MockCirculationServiceMockRecorder) GetBorrow(ctx, borrowID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBorrow", reflect.TypeOf((*MockCirculationService)(nil).GetBorrow), ctx, borrowID)
}

// ListBorrows mocks base method.
func (m *MockCirculationService) ListBorrows(ctx context.Context, q ports.BorrowQuery) (*ports.BorrowPage, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListBorrows", ctx, q)
	ret0, _ := ret[0].(*ports.BorrowPage)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListBorrows indicates an expected call of ListBorrows.
func (mr *MockCirculationServiceMockRecorder) ListBorrows(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListBorrows", reflect.TypeOf((*MockCirculationService)(nil).ListBorrows), ctx, q)
}

// Renew mocks base method.
func (m *MockCirculationService) Renew(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Renew", ctx, borrowID)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Renew indicates an expected call of Renew.
func (mr *MockCirculationServiceMockRecorder) Renew(ctx, borrowID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Renew", reflect.TypeOf((*MockCirculationService)(nil).Renew), ctx, borrowID)
}

// MockPaymentService is a mock of PaymentService interface.
type MockPaymentService struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentServiceMockRecorder
	isgomock struct{}
}

// MockPaymentServiceMockRecorder is the mock recorder for MockPaymentService.
type MockPaymentServiceMockRecorder struct {
	mock *MockPaymentService
}

// NewMockPaymentService creates a new mock instance.
func NewMockPaymentService(ctrl *gomock.Controller) *MockPaymentService {
	mock := &MockPaymentService{ctrl: ctrl}
	mock.recorder = &MockPaymentServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentService) EXPECT() *MockPaymentServiceMockRecorder {
	return m.recorder
}

// ConfirmCashReturn mocks base method.
func (m *MockPaymentService) ConfirmCashReturn(ctx context.Context, borrowID uuid.UUID) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmCashReturn", ctx, borrowID)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ConfirmCashReturn indicates an expected call of ConfirmCashReturn.
func (mr *MockPaymentServiceMockRecorder) ConfirmCashReturn(ctx, borrowID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmCashReturn", reflect.TypeOf((*MockPaymentService)(nil).ConfirmCashReturn), ctx, borrowID)
}

// ConfirmGatewayReturn mocks base method.
func (m *MockPaymentService) ConfirmGatewayReturn(ctx context.Context, borrowID uuid.UUID, transactionID string, outcome domain.PaymentOutcome) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmGatewayReturn", ctx, borrowID, transactionID, outcome)
	ret0, _ := ret[0].(error)
	return ret0
}

// ConfirmGatewayReturn indicates an expected call of ConfirmGatewayReturn.
func (mr *MockPaymentServiceMockRecorder) ConfirmGatewayReturn(ctx, borrowID, transactionID, outcome any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmGatewayReturn", reflect.TypeOf((*MockPaymentService)(nil).ConfirmGatewayReturn), ctx, borrowID, transactionID, outcome)
}

// ExpirePendingPayments mocks base method.
func (m *MockPaymentService) ExpirePendingPayments(ctx context.Context) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ExpirePendingPayments", ctx)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ExpirePendingPayments indicates an expected call of ExpirePendingPayments.
func (mr *MockPaymentServiceMockRecorder) ExpirePendingPayments(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ExpirePendingPayments", reflect.TypeOf((*MockPaymentService)(nil).ExpirePendingPayments), ctx)
}

// PrepareReturn mocks base method.
func (m *MockPaymentService) PrepareReturn(ctx context.Context, borrowID uuid.UUID, method domain.PaymentMethod) (*ports.PaymentIntent, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PrepareReturn", ctx, borrowID, method)
	ret0, _ := ret[0].(*ports.PaymentIntent)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PrepareReturn indicates an expected call of PrepareReturn.
func (mr *MockPaymentServiceMockRecorder) PrepareReturn(ctx, borrowID, method any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PrepareReturn", reflect.TypeOf((*MockPaymentService)(nil).PrepareReturn), ctx, borrowID, method)
}
