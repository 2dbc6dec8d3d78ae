package model

import "time"

// Message is a single board entry. Rows are insert-only.
type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content   string    `gorm:"size:255;not null" json:"content"`
	// precision:0 keeps the MySQL column type in step with its CURRENT_TIMESTAMP default.
	CreatedAt time.Time `gorm:"precision:0;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
