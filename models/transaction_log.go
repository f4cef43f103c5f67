package models

import "time"

// TransactionLog records one API request. UserID and Email are nil for
// unauthenticated calls; ErrorMessage holds the response body of failed calls.
type TransactionLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *string   `gorm:"column:user_id;type:varchar(36);index" json:"userId"`
	Email        *string   `gorm:"size:255;index" json:"email"`
	Endpoint     string    `gorm:"size:512;not null" json:"endpoint"`
	HTTPMethod   string    `gorm:"column:http_method;size:10;not null" json:"httpMethod"`
	StatusCode   int       `gorm:"column:status_code;not null" json:"statusCode"`
	ErrorMessage *string   `gorm:"column:error_message;type:text" json:"errorMessage"`
	CreatedAt    time.Time `gorm:"column:created_at;index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"User,omitempty"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}
