package listbooks

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Books represents the query result containing the whole catalogue.
type Books struct {
	Books []ledger.Book
	Count int
}
