package db

import (
	"github.com/promptstack-dev/promptstack/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

// singleActiveVersionIndex is the storage-level backstop for the exclusivity
// rule: no two live versions of one prompt may both be marked active. The
// application deactivates siblings before activating, but a racing writer is
// stopped here and surfaces as gorm.ErrDuplicatedKey.
const singleActiveVersionIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_prompt_versions_single_active
ON prompt_versions (prompt_id)
WHERE is_active_version AND is_active`

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Project{},
		&models.Prompt{},
		&models.PromptVersion{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return DB.Exec(singleActiveVersionIndex).Error
}
