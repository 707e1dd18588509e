package borrowbook

import (
	"time"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "BorrowBook"
)

// Command represents the intent to borrow a copy of a book.
// BorrowerID is nil when the actor borrows for themselves. A zero DueDate means the default loan period.
type Command struct {
	Actor      ledger.Actor
	BookID     int64
	BorrowerID *int64
	DueDate    time.Time
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor ledger.Actor, bookID int64, borrowerID *int64, dueDate time.Time) Command {
	return Command{
		Actor:      actor,
		BookID:     bookID,
		BorrowerID: borrowerID,
		DueDate:    dueDate,
	}
}
