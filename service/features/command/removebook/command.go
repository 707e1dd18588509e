package removebook

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "RemoveBook"
)

// Command represents the intent of staff to remove a book.
type Command struct {
	Actor  ledger.Actor
	BookID int64
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor ledger.Actor, bookID int64) Command {
	return Command{Actor: actor, BookID: bookID}
}
