package domain

// Principal is the resolved identity of the caller for one request.
type Principal struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Admin     bool
}
