package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // хэш наружу не отдаем
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
