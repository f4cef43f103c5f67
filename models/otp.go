package models

import "time"

// Otp is a one-time password-reset code issued to a user.
type Otp struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"column:otp;size:6;not null" json:"-"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Otp) TableName() string {
	return "otps"
}

func (o Otp) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}
