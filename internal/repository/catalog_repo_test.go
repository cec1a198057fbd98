package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/models"
)

func TestTestCaseRepositoryListsInCatalogOrder(t *testing.T) {
	db := setupTestDB(t)
	questions := NewQuestionRepository(db)
	testCases := NewTestCaseRepository(db)
	ctx := context.Background()

	square := models.Question{Title: "Square"}
	other := models.Question{Title: "Other"}
	require.NoError(t, db.Create(&square).Error)
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&models.TestCase{QuestionID: square.ID, Input: "3", ExpectedOutput: "9"}).Error)
	require.NoError(t, db.Create(&models.TestCase{QuestionID: other.ID, Input: "x", ExpectedOutput: "y"}).Error)
	require.NoError(t, db.Create(&models.TestCase{QuestionID: square.ID, Input: "4", ExpectedOutput: "16"}).Error)

	cases, err := testCases.ListByQuestion(ctx, square.ID)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, "3", cases[0].Input)
	require.Equal(t, "4", cases[1].Input)

	empty, err := testCases.ListByQuestion(ctx, 999)
	require.NoError(t, err)
	require.Empty(t, empty)

	list, err := questions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Square", list[0].Title)

	_, err = questions.GetByID(ctx, 999)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUserRepositoryFindByProviderID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{ProviderID: "github|42", Provider: "github", Email: "ada@example.com"}
	require.NoError(t, repo.Create(ctx, &user))

	found, err := repo.FindByProviderID(ctx, "github|42")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.FindByProviderID(ctx, "unknown")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	duplicate := models.User{ProviderID: "github|42", Provider: "github", Email: "other@example.com"}
	require.Error(t, repo.Create(ctx, &duplicate))
}
