package listloans

import (
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

// Loans represents the query result containing the matching loans with their book and borrower details.
type Loans struct {
	Loans []ledger.LoanDetails
	Count int
}
