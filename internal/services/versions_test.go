package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/promptstack-dev/promptstack/internal/apperrors"
	"github.com/promptstack-dev/promptstack/internal/models"
)

func countActive(t *testing.T, gdb *gorm.DB, promptID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, gdb.Model(&models.PromptVersion{}).
		Where("prompt_id = ? AND is_active_version = ? AND is_active = ?", promptID, true, true).
		Count(&count).Error)

	return count
}

func TestCreateVersionTrimsText(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	version, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "  X  "})
	require.NoError(t, err)

	fetched, err := GetVersion(gdb, user.ID, version.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", fetched.Text)
	assert.Equal(t, "v1", fetched.SequenceLabel)
	assert.Equal(t, "Version 1", fetched.DisplayName)
	assert.False(t, fetched.IsActiveVersion)
}

func TestCreateVersionValidation(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	_, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestMonotonicNumberingAcrossDeletes(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	v1, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one"})
	require.NoError(t, err)
	v2, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two"})
	require.NoError(t, err)

	assert.Equal(t, "v1", v1.SequenceLabel)
	assert.Equal(t, "v2", v2.SequenceLabel)

	// Deleting v1 must not free its number for reuse
	_, err = SoftDeleteVersion(gdb, user.ID, v1.ID)
	require.NoError(t, err)

	v3, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "three"})
	require.NoError(t, err)
	assert.Equal(t, "v3", v3.SequenceLabel)
	assert.Equal(t, "Version 3", v3.DisplayName)

	// v2 keeps its label
	fetched, err := GetVersion(gdb, user.ID, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", fetched.SequenceLabel)
}

func TestNumberingIsPerPrompt(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	promptA := createTestPrompt(t, gdb, user.ID, project.ID, "A")
	promptB := createTestPrompt(t, gdb, user.ID, project.ID, "B")

	for i := 0; i < 3; i++ {
		_, err := CreateVersion(gdb, user.ID, promptA.ID, CreateVersionInput{Text: fmt.Sprintf("a%d", i)})
		require.NoError(t, err)
	}

	vb, err := CreateVersion(gdb, user.ID, promptB.ID, CreateVersionInput{Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, "v1", vb.SequenceLabel)
}

func TestMakeActiveDeactivatesPrevious(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	v1, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one", MakeActive: true})
	require.NoError(t, err)
	assert.True(t, v1.IsActiveVersion)

	v2, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two", MakeActive: true})
	require.NoError(t, err)
	assert.True(t, v2.IsActiveVersion)

	active, err := ActiveForPrompt(gdb, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	fetched, err := GetVersion(gdb, user.ID, v1.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActiveVersion)

	assert.EqualValues(t, 1, countActive(t, gdb, prompt.ID))
}

func TestActivateSwitchesActiveVersion(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	v1, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one", MakeActive: true})
	require.NoError(t, err)
	v2, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two"})
	require.NoError(t, err)

	activated, err := Activate(gdb, user.ID, v2.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActiveVersion)

	fetched, err := GetVersion(gdb, user.ID, v1.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActiveVersion)

	assert.EqualValues(t, 1, countActive(t, gdb, prompt.ID))
}

func TestUpdateVersionActivationPath(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	v1, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one", MakeActive: true})
	require.NoError(t, err)
	v2, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two"})
	require.NoError(t, err)

	active := true
	updated, err := UpdateVersion(gdb, user.ID, v2.ID, UpdateVersionInput{IsActiveVersion: &active})
	require.NoError(t, err)
	assert.True(t, updated.IsActiveVersion)

	fetched, err := GetVersion(gdb, user.ID, v1.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActiveVersion)

	assert.EqualValues(t, 1, countActive(t, gdb, prompt.ID))
}

func TestUpdateVersionNoFields(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	version, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one"})
	require.NoError(t, err)

	_, err = UpdateVersion(gdb, user.ID, version.ID, UpdateVersionInput{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeleteActiveVersionDoesNotPromote(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	_, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one"})
	require.NoError(t, err)
	v2, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two", MakeActive: true})
	require.NoError(t, err)

	_, err = SoftDeleteVersion(gdb, user.ID, v2.ID)
	require.NoError(t, err)

	_, err = ActiveForPrompt(gdb, prompt.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestSoftDeletedVersionCannotBeActivated(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	version, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one"})
	require.NoError(t, err)

	_, err = SoftDeleteVersion(gdb, user.ID, version.ID)
	require.NoError(t, err)

	_, err = Activate(gdb, user.ID, version.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestActiveForPromptPublicPath(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	_, err := ActiveForPrompt(gdb, prompt.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	version, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "live", MakeActive: true})
	require.NoError(t, err)

	active, err := ActiveForPrompt(gdb, prompt.ID)
	require.NoError(t, err)
	assert.Equal(t, version.ID, active.ID)

	// Deleting the prompt hides the active version from the public path
	_, err = DeletePrompt(gdb, user.ID, prompt.ID)
	require.NoError(t, err)

	_, err = ActiveForPrompt(gdb, prompt.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestVersionOwnershipIsolation(t *testing.T) {
	gdb := newTestDB(t)
	owner := createTestUser(t, gdb, "owner@example.com")
	intruder := createTestUser(t, gdb, "intruder@example.com")
	project := createTestProject(t, gdb, owner.ID, "P1")
	prompt := createTestPrompt(t, gdb, owner.ID, project.ID, "Pr1")

	version, err := CreateVersion(gdb, owner.ID, prompt.ID, CreateVersionInput{Text: "secret"})
	require.NoError(t, err)

	_, err = GetVersion(gdb, intruder.ID, version.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = Activate(gdb, intruder.ID, version.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = SoftDeleteVersion(gdb, intruder.ID, version.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = CreateVersion(gdb, intruder.ID, prompt.ID, CreateVersionInput{Text: "planted"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

// The storage-level backstop: even if application sequencing is bypassed, the
// partial unique index refuses a second live active version.
func TestUniqueIndexRejectsSecondActiveVersion(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	_, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one", MakeActive: true})
	require.NoError(t, err)

	rogue := models.PromptVersion{
		BaseModel:       models.BaseModel{IsActive: true},
		OwnerID:         user.ID,
		PromptID:        prompt.ID,
		Text:            "rogue",
		SequenceLabel:   "v2",
		DisplayName:     "Version 2",
		IsActiveVersion: true,
	}

	err = gdb.Create(&rogue).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	assert.EqualValues(t, 1, countActive(t, gdb, prompt.ID))
}

func TestListVersionsFiltersDeleted(t *testing.T) {
	gdb := newTestDB(t)
	user := createTestUser(t, gdb, "owner@example.com")
	project := createTestProject(t, gdb, user.ID, "P1")
	prompt := createTestPrompt(t, gdb, user.ID, project.ID, "Pr1")

	v1, err := CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "one"})
	require.NoError(t, err)
	_, err = CreateVersion(gdb, user.ID, prompt.ID, CreateVersionInput{Text: "two"})
	require.NoError(t, err)

	_, err = SoftDeleteVersion(gdb, user.ID, v1.ID)
	require.NoError(t, err)

	versions, err := ListVersions(gdb, user.ID, prompt.ID, false)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	all, err := ListVersions(gdb, user.ID, prompt.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
