package entities

import "time"

// Surprise represents the persisted surprise row.
type Surprise struct {
	ID           string    `gorm:"type:varchar(40);primaryKey"`
	Slug         string    `gorm:"type:varchar(64);uniqueIndex:idx_surprises_slug;not null"`
	ContentRef   string    `gorm:"type:text;not null"`
	OriginalName string    `gorm:"type:varchar(255);not null;default:''"`
	MimeType     string    `gorm:"type:varchar(127);not null"`
	Message      string    `gorm:"type:text;not null"`
	PasswordHash *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Surprise) TableName() string {
	return "surprises"
}
