package registeruser

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "RegisterUser"
)

// Command represents a registration. Actor is nil for anonymous callers.
type Command struct {
	Actor    *ledger.Actor
	Fields   ledger.UserFields
	Password string
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor *ledger.Actor, fields ledger.UserFields, password string) Command {
	if actor == nil || !actor.IsStaff {
		fields.IsStaff = false
	}

	return Command{Actor: actor, Fields: fields, Password: password}
}
