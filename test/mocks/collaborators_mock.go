// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/collaborators.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/collaborators.go -destination=collaborators_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	io "io"
	reflect "reflect"
	time "time"

	domain "github.com/ammerola/library-be/internal/core/domain"
	ports "github.com/ammerola/library-be/internal/core/ports"
	gomock "go.uber.org/mock/gomock"
)

// MockNotifier is a mock of Notifier interface.
type MockNotifier struct {
	ctrl     *gomock.Controller
	recorder *MockNotifierMockRecorder
	isgomock struct{}
}

// MockNotifierMockRecorder is the mock recorder for MockNotifier.
type MockNotifierMockRecorder struct {
	mock *MockNotifier
}

// NewMockNotifier creates a new mock instance.
func NewMockNotifier(ctrl *gomock.Controller) *MockNotifier {
	mock := &MockNotifier{ctrl: ctrl}
	mock.recorder = &MockNotifierMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockNotifier) EXPECT() *MockNotifierMockRecorder {
	return m.recorder
}

// LoanCreated mocks base method.
func (m *MockNotifier) LoanCreated(ctx context.Context, borrow *domain.Borrow) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LoanCreated", ctx, borrow)
	ret0, _ := ret[0].(error)
	return ret0
}

// LoanCreated indicates an expected call of LoanCreated.
func (mr *MockNotifierMockRecorder) LoanCreated(ctx, borrow any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LoanCreated", reflect.TypeOf((*MockNotifier)(nil).LoanCreated), ctx, borrow)
}

// LoanOverdue mocks base method.
func (m *MockNotifier) LoanOverdue(ctx context.Context, borrow *domain.Borrow) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LoanOverdue", ctx, borrow)
	ret0, _ := ret[0].(error)
	return ret0
}

// LoanOverdue indicates an expected call of LoanOverdue.
func (mr *MockNotifierMockRecorder) LoanOverdue(ctx, borrow any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LoanOverdue", reflect.TypeOf((*MockNotifier)(nil).LoanOverdue), ctx, borrow)
}

// PaymentConfirmed mocks base method.
func (m *MockNotifier) PaymentConfirmed(ctx context.Context, borrow *domain.Borrow) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PaymentConfirmed", ctx, borrow)
	ret0, _ := ret[0].(error)
	return ret0
}

// PaymentConfirmed indicates an expected call of PaymentConfirmed.
func (mr *MockNotifierMockRecorder) PaymentConfirmed(ctx, borrow any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PaymentConfirmed", reflect.TypeOf((*MockNotifier)(nil).PaymentConfirmed), ctx, borrow)
}

// MockPaymentGateway is a mock of PaymentGateway interface.
type MockPaymentGateway struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentGatewayMockRecorder
	isgomock struct{}
}

// MockPaymentGatewayMockRecorder is the mock recorder for MockPaymentGateway.
type MockPaymentGatewayMockRecorder struct {
	mock *MockPaymentGateway
}

// NewMockPaymentGateway creates a new mock instance.
func NewMockPaymentGateway(ctrl *gomock.Controller) *MockPaymentGateway {
	mock := &MockPaymentGateway{ctrl: ctrl}
	mock.recorder = &MockPaymentGatewayMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentGateway) EXPECT() *MockPaymentGatewayMockRecorder {
	return m.recorder
}

// CreatePaymentURL mocks base method.
func (m *MockPaymentGateway) CreatePaymentURL(ctx context.Context, order ports.PaymentOrder) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreatePaymentURL", ctx, order)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreatePaymentURL indicates an expected call of CreatePaymentURL.
func (mr *MockPaymentGatewayMockRecorder) CreatePaymentURL(ctx, order any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreatePaymentURL", reflect.TypeOf((*MockPaymentGateway)(nil).CreatePaymentURL), ctx, order)
}

// Method mocks base method.
func (m *MockPaymentGateway) Method() domain.PaymentMethod {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Method")
	ret0, _ := ret[0].(domain.PaymentMethod)
	return ret0
}

// Method indicates an expected call of Method.
func (mr *MockPaymentGatewayMockRecorder) Method() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Method", reflect.TypeOf((*MockPaymentGateway)(nil).Method))
}

// MockCoverStorage is a mock of CoverStorage interface.
type MockCoverStorage struct {
	ctrl     *gomock.Controller
	recorder *MockCoverStorageMockRecorder
	isgomock struct{}
}

// MockCoverStorageMockRecorder is the mock recorder for MockCoverStorage.
type MockCoverStorageMockRecorder struct {
	mock *MockCoverStorage
}

// NewMockCoverStorage creates a new mock instance.
func NewMockCoverStorage(ctrl *gomock.Controller) *MockCoverStorage {
	mock := &MockCoverStorage{ctrl: ctrl}
	mock.recorder = &MockCoverStorageMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCoverStorage) EXPECT() *MockCoverStorageMockRecorder {
	return m.recorder
}

// Delete mocks base method.
func (m *MockCoverStorage) Delete(ctx context.Context, key string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, key)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockCoverStorageMockRecorder) Delete(ctx, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockCoverStorage)(nil).Delete), ctx, key)
}

// PresignGet mocks base method.
func (m *MockCoverStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "PresignGet", ctx, key, expiry)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// PresignGet indicates an expected call of PresignGet.
func (mr *MockCoverStorageMockRecorder) PresignGet(ctx, key, expiry any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "PresignGet", reflect.TypeOf((*MockCoverStorage)(nil).PresignGet), ctx, key, expiry)
}

// Upload mocks base method.
func (m *MockCoverStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upload", ctx, key, contentType, body)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Upload indicates an expected call of Upload.
func (mr *MockCoverStorageMockRecorder) Upload(ctx, key, contentType, body any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upload", reflect.TypeOf((*MockCoverStorage)(nil).Upload), ctx, key, contentType, body)
}
