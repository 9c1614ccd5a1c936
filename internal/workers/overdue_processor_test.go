// internal/workers/overdue_processor_test.go
package workers_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/library-be/internal/core/domain"
	"github.com/ammerola/library-be/internal/workers"
	"github.com/ammerola/library-be/test/helpers"
	"github.com/ammerola/library-be/test/mocks"
)

func TestOverdueProcessor_ScanOverdue(t *testing.T) {
	overdueA := helpers.CreateTestBorrow(uuid.New(), uuid.New())
	overdueB := helpers.CreateTestBorrow(uuid.New(), uuid.New())

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockBorrowRepository, *mocks.MockNotifier)
		expectedError bool
		errorContains string
	}{
		{
			name: "notifies_and_marks_each_overdue_loan",
			setupMocks: func(borrows *mocks.MockBorrowRepository, notifier *mocks.MockNotifier) {
				borrows.EXPECT().
					FindOverdue(gomock.Any(), gomock.Any(), 500).
					Return([]*domain.Borrow{overdueA, overdueB}, nil)
				notifier.EXPECT().LoanOverdue(gomock.Any(), overdueA).Return(nil)
				borrows.EXPECT().MarkNotified(gomock.Any(), overdueA.ID).Return(nil)
				notifier.EXPECT().LoanOverdue(gomock.Any(), overdueB).Return(nil)
				borrows.EXPECT().MarkNotified(gomock.Any(), overdueB.ID).Return(nil)
			},
		},
		{
			name: "does_nothing_when_no_loans_are_overdue",
			setupMocks: func(borrows *mocks.MockBorrowRepository, _ *mocks.MockNotifier) {
				borrows.EXPECT().
					FindOverdue(gomock.Any(), gomock.Any(), 500).
					Return(nil, nil)
			},
		},
		{
			name: "keeps_loan_unmarked_when_the_notice_fails",
			setupMocks: func(borrows *mocks.MockBorrowRepository, notifier *mocks.MockNotifier) {
				borrows.EXPECT().
					FindOverdue(gomock.Any(), gomock.Any(), 500).
					Return([]*domain.Borrow{overdueA, overdueB}, nil)
				// The failed notice must not be marked, so the next scan
				// retries it. The rest of the batch still goes out.
				notifier.EXPECT().LoanOverdue(gomock.Any(), overdueA).Return(assert.AnError)
				notifier.EXPECT().LoanOverdue(gomock.Any(), overdueB).Return(nil)
				borrows.EXPECT().MarkNotified(gomock.Any(), overdueB.ID).Return(nil)
			},
		},
		{
			name: "fails_when_the_overdue_query_fails",
			setupMocks: func(borrows *mocks.MockBorrowRepository, _ *mocks.MockNotifier) {
				borrows.EXPECT().
					FindOverdue(gomock.Any(), gomock.Any(), 500).
					Return(nil, assert.AnError)
			},
			expectedError: true,
			errorContains: "failed to find overdue borrows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockBorrows := mocks.NewMockBorrowRepository(ctrl)
			mockNotifier := mocks.NewMockNotifier(ctrl)
			tt.setupMocks(mockBorrows, mockNotifier)

			processor := workers.NewOverdueProcessor(mockBorrows, mockNotifier, helpers.TestLogger())

			task := asynq.NewTask(workers.TypeOverdueScan, nil)
			err := processor.ScanOverdue(context.Background(), task)

			if tt.expectedError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
