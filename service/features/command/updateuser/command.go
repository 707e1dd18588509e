package updateuser

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "UpdateUser"
)

// Command changes the profile of a user. Attributes without a change keep their value,
// Password is nil when it stays unchanged.
type Command struct {
	Actor    ledger.Actor
	UserID   int64
	Changes  ledger.UserChanges
	Password *string
}

// CommandType returns the command name used in metrics, spans, and logs.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command.
func BuildCommand(actor ledger.Actor, userID int64, changes ledger.UserChanges, password *string) Command {
	return Command{Actor: actor, UserID: userID, Changes: changes, Password: password}
}
