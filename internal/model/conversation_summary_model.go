package model

import "time"

type ConversationSummary struct {
	ConversationID string    `gorm:"type:varchar(128);primaryKey"`
	Summary        string    `gorm:"type:text;not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;not null"`
}

func (ConversationSummary) TableName() string {
	return "conversation_summaries"
}
