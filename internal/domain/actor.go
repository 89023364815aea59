package domain

// Actor identifies who performs an admin action and from where.
// A nil UserID is the system.
type Actor struct {
	UserID    *uint64
	IPAddress string
	UserAgent string
}

// SystemActor returns an actor without a user
func SystemActor() Actor {
	return Actor{}
}
