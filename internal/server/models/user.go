// Package models defines server-side records persisted in PostgreSQL.
package models

import "time"

// User is an identity provider account. PasswordHash is an argon2id PHC
// string and never leaves the server.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
