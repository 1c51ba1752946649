package model

// User is a staff account. Accounts are provisioned out-of-band.
type User struct {
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password"`
	Name         string `json:"name" db:"name"`
}

// SessionResponse is returned to a successfully authenticated caller.
type SessionResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"isAdmin"`
}
