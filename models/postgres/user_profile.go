package postgres

import "time"

/*
 * 'UserProfile' mirrors the identity provider's view of a user. It is
 * upserted on every authenticated request, keyed by the canonical uid.
 */
type UserProfile struct {
	UID       string    `gorm:"primaryKey;size:128" json:"uid"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Name      string    `gorm:"size:100" json:"name"`
	Picture   string    `gorm:"size:512" json:"picture"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
