package repositories_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"userdir/internal/apperrors"
	"userdir/internal/models"
	"userdir/internal/repositories"
)

func setupRepo(t *testing.T) *repositories.GORMUserRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}))
	return repositories.NewGORMUserRepository(db)
}

func storedUser(username string) models.User {
	return models.User{
		Username: username,
		Name:     "Test User",
		Email:    username + "@x.com",
		Gender:   "Other",
		Picture:  "https://x/p.png",
		Country:  "US",
		State:    "CA",
		City:     "LA",
	}
}

func TestGORMUserRepository_GetAll_UnboundedPage(t *testing.T) {
	repo := setupRepo(t)

	for i := 0; i < 3; i++ {
		u := storedUser(fmt.Sprintf("user_%04d", i))
		_, err := repo.Save(&u)
		assert.NoError(t, err)
	}

	// The tree view loads everything with the largest possible page
	// size; the allocation must follow the stored total, not the
	// requested size.
	page, err := repo.GetAll(0, math.MaxInt)

	assert.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "user_0000", page.Items[0].Username)
}

func TestGORMUserRepository_GetAll_UnboundedPageEmptyStore(t *testing.T) {
	repo := setupRepo(t)

	page, err := repo.GetAll(0, math.MaxInt)

	assert.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalItems)
	assert.Zero(t, page.TotalPages)
}

func TestGORMUserRepository_Save_DuplicateUsername(t *testing.T) {
	repo := setupRepo(t)

	first := storedUser("john_doe")
	_, err := repo.Save(&first)
	assert.NoError(t, err)

	clash := storedUser("john_doe")
	saved, err := repo.Save(&clash)
	assert.Error(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
}

func TestGORMUserRepository_SaveAll_DuplicateFailsWholeBatch(t *testing.T) {
	repo := setupRepo(t)

	existing := storedUser("john_doe")
	_, err := repo.Save(&existing)
	assert.NoError(t, err)

	batch := []models.User{storedUser("jane_doe"), storedUser("john_doe")}
	saved, err := repo.SaveAll(batch)
	assert.Error(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, apperrors.StoreFailure, apperrors.KindOf(err))

	// All-or-nothing: the clean element was rolled back with the batch.
	_, err = repo.GetByUsername("jane_doe")
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}
