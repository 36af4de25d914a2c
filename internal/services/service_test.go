package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptstack-dev/promptstack/internal/models"
)

// The suite runs against an in-memory sqlite database, which supports the
// same partial unique index the postgres deployment relies on.
const singleActiveVersionIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_prompt_versions_single_active
ON prompt_versions (prompt_id)
WHERE is_active_version AND is_active`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// One shared in-memory database for the whole pool
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Prompt{},
		&models.PromptVersion{},
	))
	require.NoError(t, gdb.Exec(singleActiveVersionIndex).Error)

	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		BaseModel:    models.BaseModel{IsActive: true},
		Email:        email,
		PasswordHash: "x",
	}
	require.NoError(t, gdb.Create(&user).Error)

	return user
}

func createTestProject(t *testing.T, gdb *gorm.DB, ownerID uint, name string) models.Project {
	t.Helper()

	project, err := CreateProject(gdb, ownerID, CreateProjectInput{Name: name})
	require.NoError(t, err)

	return project
}

func createTestPrompt(t *testing.T, gdb *gorm.DB, ownerID uint, projectID uint, name string) models.Prompt {
	t.Helper()

	prompt, err := CreatePrompt(gdb, ownerID, projectID, CreatePromptInput{Name: name})
	require.NoError(t, err)

	return prompt
}
