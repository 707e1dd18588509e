package listusers

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Users represents the query result containing all registered users.
type Users struct {
	Users []ledger.User
	Count int
}
