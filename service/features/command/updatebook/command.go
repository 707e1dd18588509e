package updatebook

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "UpdateBook"
)

// Command changes the attributes of a book. Attributes without a change keep their value.
type Command struct {
	Actor   ledger.Actor
	BookID  int64
	Changes ledger.BookChanges
}

// CommandType returns the command name used in metrics, spans, and logs.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command. Availability is not part of the changes, it follows the quantity.
func BuildCommand(actor ledger.Actor, bookID int64, changes ledger.BookChanges) Command {
	return Command{Actor: actor, BookID: bookID, Changes: changes}
}
