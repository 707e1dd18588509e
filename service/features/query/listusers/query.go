package listusers

const (
	queryType = "ListUsers"
)

// Query represents a request for all users.
type Query struct{}

// QueryType returns "ListUsers".
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates the Query. It has no parameters.
func BuildQuery() Query {
	return Query{}
}
