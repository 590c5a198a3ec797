package models

// Group represents a recurring set of players who run cash games together.
// Groups own games, enabling per-group game history.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Thursday Night", "Office Game").
	Name string

	// Members is the list of user IDs belonging to this group.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
