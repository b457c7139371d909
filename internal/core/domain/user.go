package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a wallet holder.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contact is a saved beneficiary for quick repeat purchases.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
}
