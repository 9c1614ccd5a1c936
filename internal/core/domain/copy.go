// internal/core/domain/copy.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CopyStatus represents the state of a physical copy
type CopyStatus string

// Copy status constants. Available and Borrowed cycle with the loan
// lifecycle; Lost and Retired are terminal.
const (
	CopyAvailable CopyStatus = "available"
	CopyBorrowed  CopyStatus = "borrowed"
	CopyLost      CopyStatus = "lost"
	CopyRetired   CopyStatus = "retired"
)

// Valid reports whether s is one of the defined copy statuses.
func (s CopyStatus) Valid() bool {
	switch s {
	case CopyAvailable, CopyBorrowed, CopyLost, CopyRetired:
		return true
	}
	return false
}

// Terminal reports whether s allows no further transitions.
func (s CopyStatus) Terminal() bool {
	return s == CopyLost || s == CopyRetired
}

// BookCopy represents one physical instance of a Book. Copies are owned
// by the copy registry; the Book holds only counters, never references.
type BookCopy struct {
	ID        uuid.UUID  `json:"id"`
	BookID    uuid.UUID  `json:"book_id"`
	Code      string     `json:"code"`
	Status    CopyStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Claim transitions the copy to borrowed. Only an available copy can be
// claimed; anything else is a caller bug or a lost race.
func (c *BookCopy) Claim() error {
	if c.Status != CopyAvailable {
		return fmt.Errorf("%w: copy %s is %s", ErrNoCopyAvailable, c.Code, c.Status)
	}
	c.Status = CopyBorrowed
	return nil
}

// Release transitions borrowed back to available. Releasing a copy that
// is not borrowed fails loudly to surface double-release bugs.
func (c *BookCopy) Release() error {
	if c.Status != CopyBorrowed {
		return fmt.Errorf("%w: copy %s is %s", ErrCopyNotBorrowed, c.Code, c.Status)
	}
	c.Status = CopyAvailable
	return nil
}

// MarkLost retires the copy as lost. Only permitted from available; a
// copy out on loan is resolved through its borrow record first.
func (c *BookCopy) MarkLost() error {
	if c.Status != CopyAvailable {
		return fmt.Errorf("%w: copy %s is %s", ErrCopyNotAvailable, c.Code, c.Status)
	}
	c.Status = CopyLost
	return nil
}

// Retire removes the copy from circulation. Same precondition as MarkLost.
func (c *BookCopy) Retire() error {
	if c.Status != CopyAvailable {
		return fmt.Errorf("%w: copy %s is %s", ErrCopyNotAvailable, c.Code, c.Status)
	}
	c.Status = CopyRetired
	return nil
}

// CopyCode builds the human-facing code for the nth copy of a book,
// e.g. "7f3a9c-c004".
func CopyCode(bookID uuid.UUID, n int) string {
	return fmt.Sprintf("%s-c%03d", bookID.String()[:6], n)
}
