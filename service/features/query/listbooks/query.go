package listbooks

const (
	queryType = "ListBooks"
)

// Query represents a request for the whole catalog.
type Query struct{}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates the Query. It has no parameters.
func BuildQuery() Query {
	return Query{}
}
