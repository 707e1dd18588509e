package addbook

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "AddBook"
)

// Command represents the intent of staff to add a book to the catalog.
type Command struct {
	Actor  ledger.Actor
	Fields ledger.BookFields
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor ledger.Actor, fields ledger.BookFields) Command {
	return Command{Actor: actor, Fields: fields}
}
