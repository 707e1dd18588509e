package returnloan

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent to return a borrowed copy.
type Command struct {
	Actor  ledger.Actor
	LoanID int64
}

// CommandType returns the type identifier for this command, used for observability.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(actor ledger.Actor, loanID int64) Command {
	return Command{Actor: actor, LoanID: loanID}
}
