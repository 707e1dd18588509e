package removeuser

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "RemoveUser"
)

// Command represents the intent of staff to delete a user.
type Command struct {
	Actor  ledger.Actor
	UserID int64
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor ledger.Actor, userID int64) Command {
	return Command{Actor: actor, UserID: userID}
}
