package getloan

const (
	queryType = "GetLoan"
)

// Query represents a request for a single loan with its book and borrower.
type Query struct {
	LoanID int64
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(loanID int64) Query {
	return Query{LoanID: loanID}
}
