package port

// SessionRepository stores live session values keyed by session ID.
// Entries expire after a period of inactivity.
type SessionRepository[T any] interface {
	Get(id string) (T, bool)
	Save(id string, value T)
	Delete(id string)
	Count() int
}
