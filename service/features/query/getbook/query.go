package getbook

const (
	queryType = "GetBook"
)

// Query represents a request for a single book.
type Query struct {
	BookID int64
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a Query for bookID.
func BuildQuery(bookID int64) Query {
	return Query{BookID: bookID}
}
