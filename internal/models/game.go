package models

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	// GameActive means the game is still accepting transactions.
	GameActive GameStatus = "active"
	// GameCompleted means the books balanced and the game was closed.
	// Completed games reject transaction mutations.
	GameCompleted GameStatus = "completed"
)

// Game represents a single cash-game session owned by a group.
type Game struct {
	// ID is the unique identifier for the game (UUID format).
	ID string

	// GroupID is the group this game belongs to.
	GroupID string

	// Name is a human-readable label (e.g., "Friday 3/14").
	Name string

	// Participants is the list of user IDs seated at this game. Players who
	// have not transacted yet still get a zero balance entry.
	Participants []string

	// Status is either GameActive or GameCompleted.
	Status GameStatus

	// CreatedAt is the Unix timestamp when the game was created.
	CreatedAt int64

	// CompletedAt is the Unix timestamp when the game was closed,
	// zero while active.
	CompletedAt int64
}
