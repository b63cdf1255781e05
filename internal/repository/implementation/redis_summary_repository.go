package implementation

import (
	"context"
	"errors"

	"ampersand-agent/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "ampersand:summary:"

type redisSummaryRepository struct {
	rdb *redis.Client
}

// NewRedisSummaryRepository creates a new Redis-backed summary repository
func NewRedisSummaryRepository(rdb *redis.Client) contract.ISummaryRepository {
	return &redisSummaryRepository{rdb: rdb}
}

func (r *redisSummaryRepository) Load(ctx context.Context, conversationID string) (string, error) {
	summary, err := r.rdb.Get(ctx, summaryKeyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return summary, err
}

func (r *redisSummaryRepository) Save(ctx context.Context, conversationID string, summary string) error {
	return r.rdb.Set(ctx, summaryKeyPrefix+conversationID, summary, 0).Err()
}
