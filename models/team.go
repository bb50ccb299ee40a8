package models

import "time"

type Team struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Department *string   `json:"department,omitempty" db:"department"`
	Color      *string   `json:"color,omitempty" db:"color"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
