// Code generated by MockGen. DO NOT EDIT.
// Source: ../../internal/core/ports/copy_repository.go
//
// Generated by this command:
//
//	mockgen -source=../../internal/core/ports/copy_repository.go -destination=copy_repository_mock.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/ammerola/library-be/internal/core/domain"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockCopyRepository is a mock of CopyRepository interface.
type MockCopyRepository struct {
	ctrl     *gomock.Controller
	recorder *MockCopyRepositoryMockRecorder
	isgomock struct{}
}

// MockCopyRepositoryMockRecorder is the mock recorder for MockCopyRepository.
type MockCopyRepositoryMockRecorder struct {
	mock *MockCopyRepository
}

// NewMockCopyRepository creates a new mock instance.
func NewMockCopyRepository(ctrl *gomock.Controller) *MockCopyRepository {
	mock := &MockCopyRepository{ctrl: ctrl}
	mock.recorder = &MockCopyRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCopyRepository) EXPECT() *MockCopyRepositoryMockRecorder {
	return m.recorder
}

// AddCopies mocks base method.
func (m *MockCopyRepository) AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddCopies", ctx, bookID, n)
	ret0, _ := ret[0].([]domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AddCopies indicates an expected call of AddCopies.
func (mr *MockCopyRepositoryMockRecorder) AddCopies(ctx, bookID, n any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddCopies", reflect.TypeOf((*MockCopyRepository)(nil).AddCopies), ctx, bookID, n)
}

// Claim mocks base method.
func (m *MockCopyRepository) Claim(ctx context.Context, bookID uuid.UUID) (*domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Claim", ctx, bookID)
	ret0, _ := ret[0].(*domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Claim indicates an expected call of Claim.
func (mr *MockCopyRepositoryMockRecorder) Claim(ctx, bookID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Claim", reflect.TypeOf((*MockCopyRepository)(nil).Claim), ctx, bookID)
}

// FindByID mocks base method.
func (m *MockCopyRepository) FindByID(ctx context.Context, copyID uuid.UUID) (*domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindByID", ctx, copyID)
	ret0, _ := ret[0].(*domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindByID indicates an expected call of FindByID.
func (mr *MockCopyRepositoryMockRecorder) FindByID(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindByID", reflect.TypeOf((*MockCopyRepository)(nil).FindByID), ctx, copyID)
}

// ListByBook mocks base method.
func (m *MockCopyRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]domain.BookCopy, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByBook", ctx, bookID)
	ret0, _ := ret[0].([]domain.BookCopy)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByBook indicates an expected call of ListByBook.
func (mr *MockCopyRepositoryMockRecorder) ListByBook(ctx, bookID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByBook", reflect.TypeOf((*MockCopyRepository)(nil).ListByBook), ctx, bookID)
}

// MarkLost mocks base method.
func (m *MockCopyRepository) MarkLost(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkLost", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkLost indicates an expected call of MarkLost.
func (mr *MockCopyRepositoryMockRecorder) MarkLost(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkLost", reflect.TypeOf((*MockCopyRepository)(nil).MarkLost), ctx, copyID)
}

// Release mocks base method.
func (m *MockCopyRepository) Release(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Release", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Release indicates an expected call of Release.
func (mr *MockCopyRepositoryMockRecorder) Release(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Release", reflect.TypeOf((*MockCopyRepository)(nil).Release), ctx, copyID)
}

// Remove mocks base method.
func (m *MockCopyRepository) Remove(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remove", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Remove indicates an expected call of Remove.
func (mr *MockCopyRepositoryMockRecorder) Remove(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockCopyRepository)(nil).Remove), ctx, copyID)
}

// Retire mocks base method.
func (m *MockCopyRepository) Retire(ctx context.Context, copyID uuid.UUID) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Retire", ctx, copyID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Retire indicates an expected call of Retire.
func (mr *MockCopyRepositoryMockRecorder) Retire(ctx, copyID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Retire", reflect.TypeOf((*MockCopyRepository)(nil).Retire), ctx, copyID)
}
