// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/borrow_repository.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/borrow_repository.go -destination=borrow_repository_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"
	time "time"

	domain "github.com/ammerola/library-be/internal/core/domain"
	ports "github.com/ammerola/library-be/internal/core/ports"
	uuid "github.com/google/uuid"
	decimal "github.com/shopspring/decimal"
	gomock "go.uber.org/mock/gomock"
)

// MockBorrowRepository is a mock of BorrowRepository interface.
type MockBorrowRepository struct {
	ctrl     *gomock.Controller
	recorder *MockBorrowRepositoryMockRecorder
	isgomock struct{}
}

// MockBorrowRepositoryMockRecorder is the mock recorder for MockBorrowRepository.
type MockBorrowRepositoryMockRecorder struct {
	mock *MockBorrowRepository
}

// NewMockBorrowRepository creates a new mock instance.
func NewMockBorrowRepository(ctrl *gomock.Controller) *MockBorrowRepository {
	mock := &MockBorrowRepository{ctrl: ctrl}
	mock.recorder = &MockBorrowRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBorrowRepository) EXPECT() *MockBorrowRepositoryMockRecorder {
	return m.recorder
}

// ArmPayment mocks base method.
func (m *MockBorrowRepository) ArmPayment(ctx context.Context, id uuid.UUID, method domain.PaymentMethod, amount decimal.Decimal, transactionID string, now time.Time) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ArmPayment", ctx, id, method, amount, transactionID, now)
	ret0, _ := ret[0].(error)
	return ret0
}

// ArmPayment indicates an expected call of ArmPayment.
func (mr *MockBorrowRepositoryMockRecorder) ArmPayment(ctx, id, method, amount, transactionID, now any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ArmPayment", reflect.TypeOf((*MockBorrowRepository)(nil).ArmPayment), ctx, id, method, amount, transactionID, now)
}

// ConfirmReturn mocks base method.
func (m *MockBorrowRepository) ConfirmReturn(ctx context.Context, p ports.ConfirmReturnParams) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConfirmReturn", ctx, p)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ConfirmReturn indicates an expected call of ConfirmReturn.
func (mr *MockBorrowRepositoryMockRecorder) ConfirmReturn(ctx, p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConfirmReturn", reflect.TypeOf((*MockBorrowRepository)(nil).ConfirmReturn), ctx, p)
}

// Create mocks base method.
func (m *MockBorrowRepository) Create(ctx context.Context, borrow *domain.Borrow) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, borrow)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockBorrowRepositoryMockRecorder) Create(ctx, borrow any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockBorrowRepository)(nil).Create), ctx, borrow)
}

// FindByID mocks base method.
func (m *MockBorrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindByID", ctx, id)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindByID indicates an expected call of FindByID.
func (mr *MockBorrowRepositoryMockRecorder) FindByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindByID", reflect.TypeOf((*MockBorrowRepository)(nil).FindByID), ctx, id)
}

// FindByTransactionID mocks base method.
func (m *MockBorrowRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindByTransactionID", ctx, transactionID)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindByTransactionID indicates an expected call of FindByTransactionID.
func (mr *MockBorrowRepositoryMockRecorder) FindByTransactionID(ctx, transactionID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindByTransactionID", reflect.TypeOf((*MockBorrowRepository)(nil).FindByTransactionID), ctx, transactionID)
}

// FindOpenByCopy mocks base method.
func (m *MockBorrowRepository) FindOpenByCopy(ctx context.Context, copyID uuid.UUID) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindOpenByCopy", ctx, copyID)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindOpenByCopy indicates an expected call of FindOpenByCopy.
func (mr *MockBorrowRepositoryMockRecorder) FindOpenByCopy(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindOpenByCopy", reflect.TypeOf((*MockBorrowRepository)(nil).FindOpenByCopy), ctx, copyID)
}

// FindOverdue mocks base method.
func (m *MockBorrowRepository) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindOverdue", ctx, asOf, limit)
	ret0, _ := ret[0].([]*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindOverdue indicates an expected call of FindOverdue.
func (mr *MockBorrowRepositoryMockRecorder) FindOverdue(ctx, asOf, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindOverdue", reflect.TypeOf((*MockBorrowRepository)(nil).FindOverdue), ctx, asOf, limit)
}

// List mocks base method.
func (m *MockBorrowRepository) List(ctx context.Context, q ports.BorrowQuery) ([]*domain.Borrow, int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, q)
	ret0, _ := ret[0].([]*domain.Borrow)
	ret1, _ := ret[1].(int64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// List indicates an expected call of List.
func (mr *MockBorrowRepositoryMockRecorder) List(ctx, q any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockBorrowRepository)(nil).List), ctx, q)
}

// MarkNotified mocks base method.
func (m *MockBorrowRepository) MarkNotified(ctx context.Context, id uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkNotified", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkNotified indicates an expected call of MarkNotified.
func (mr *MockBorrowRepositoryMockRecorder) MarkNotified(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkNotified", reflect.TypeOf((*MockBorrowRepository)(nil).MarkNotified), ctx, id)
}

// Renew mocks base method.
func (m *MockBorrowRepository) Renew(ctx context.Context, id uuid.UUID, extension time.Duration, maxRenewals int, now time.Time) (*domain.Borrow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Renew", ctx, id, extension, maxRenewals, now)
	ret0, _ := ret[0].(*domain.Borrow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Renew indicates an expected call of Renew.
func (mr *MockBorrowRepositoryMockRecorder) Renew(ctx, id, extension, maxRenewals, now any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Renew", reflect.TypeOf((*MockBorrowRepository)(nil).Renew), ctx, id, extension, maxRenewals, now)
}

// RevertExpiredPayments mocks base method.
func (m *MockBorrowRepository) RevertExpiredPayments(ctx context.Context, cutoff time.Time) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RevertExpiredPayments", ctx, cutoff)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RevertExpiredPayments indicates an expected call of RevertExpiredPayments.
func (mr *MockBorrowRepositoryMockRecorder) RevertExpiredPayments(ctx, cutoff any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RevertExpiredPayments", reflect.TypeOf((*MockBorrowRepository)(nil).RevertExpiredPayments), ctx, cutoff)
}
