package models

import "time"

const (
	// DefaultPasswordHash is the bcrypt hash every seeded account shares.
	DefaultPasswordHash = "$2a$10$qV7OVRQ1mud2hncbyzteO.OMlYwgyXTSOn7Y.RbgITXtL5xsOyOAi"
	// DefaultBirthDay is stored as YYYY-MM-DD.
	DefaultBirthDay = "1988-01-01"

	BirthDayLayout = "2006-01-02"
)

// User is one row of the users table as written by the seeder.
type User struct {
	Login     string `json:"login"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDay  string `json:"birthDay"`
}

// StoredUser is a users row read back from the store.
type StoredUser struct {
	ID int64 `json:"id"`
	User
}

// SeededUser is the payload placed on the seeded-users topic.
type SeededUser struct {
	Login       string    `json:"login"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	BirthDay    string    `json:"birthDay"`
	Batch       int       `json:"batch"`
	CommittedAt time.Time `json:"committed_at"`
}

// NewSeededUser drops the password hash so it never leaves the store.
func NewSeededUser(u User, batch int, committedAt time.Time) SeededUser {
	return SeededUser{
		Login:       u.Login,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDay:    u.BirthDay,
		Batch:       batch,
		CommittedAt: committedAt,
	}
}
