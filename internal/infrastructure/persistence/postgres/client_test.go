package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"story-weaver-api/internal/config"
	"story-weaver-api/internal/domain/entity"
)

func TestDSN(t *testing.T) {
	cfg := &config.PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "writer",
		Password: "pw",
		Database: "story_weaver",
	}
	assert.Equal(t, "host=db port=5432 user=writer password=pw dbname=story_weaver sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestStoryArchive_TableName(t *testing.T) {
	assert.Equal(t, "story_archives", entity.StoryArchive{}.TableName())
}
