package getuser

const (
	queryType = "GetUser"
)

// Query represents a request for a single user.
type Query struct {
	UserID int64
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a Query for userID.
func BuildQuery(userID int64) Query {
	return Query{UserID: userID}
}
