package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ampersand-agent/internal/repository/contract"
	"ampersand-agent/internal/repository/implementation"
	"ampersand-agent/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv() {
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
}

func exerciseSummaryRepository(t *testing.T, repo contract.ISummaryRepository) {
	t.Helper()
	ctx := context.Background()
	id := "it-" + uuid.NewString()

	got, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, repo.Save(ctx, id, "first"))
	require.NoError(t, repo.Save(ctx, id, "second"))

	got, err = repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestGormSummaryRepository(t *testing.T) {
	loadEnv()

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, database.Migrate(db))

	exerciseSummaryRepository(t, implementation.NewGormSummaryRepository(db))
}

func TestRedisSummaryRepository(t *testing.T) {
	loadEnv()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	exerciseSummaryRepository(t, implementation.NewRedisSummaryRepository(rdb))
}
