package implementation

import (
	"context"
	"errors"

	"ampersand-agent/internal/model"
	"ampersand-agent/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormSummaryRepository struct {
	db *gorm.DB
}

// NewGormSummaryRepository creates a new Postgres-backed summary repository
func NewGormSummaryRepository(db *gorm.DB) contract.ISummaryRepository {
	return &gormSummaryRepository{db: db}
}

func (r *gormSummaryRepository) Load(ctx context.Context, conversationID string) (string, error) {
	var m model.ConversationSummary
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return m.Summary, nil
}

func (r *gormSummaryRepository) Save(ctx context.Context, conversationID string, summary string) error {
	m := model.ConversationSummary{
		ConversationID: conversationID,
		Summary:        summary,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
	}).Create(&m).Error
}
