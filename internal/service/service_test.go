package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/database"
	"github.com/noah-isme/code-quest-api/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, providerID string) models.User {
	t.Helper()
	user := models.User{
		ProviderID: providerID,
		Provider:   "github",
		Email:      providerID + "@example.com",
		Username:   providerID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedQuestion stores a question with one test case per input/expected pair.
func seedQuestion(t *testing.T, db *gorm.DB, title string, cases ...[2]string) models.Question {
	t.Helper()
	question := models.Question{Title: title, Difficulty: "easy", Tags: datatypes.JSONSlice[string]{"math"}}
	require.NoError(t, db.Create(&question).Error)
	for _, pair := range cases {
		testCase := models.TestCase{QuestionID: question.ID, Input: pair[0], ExpectedOutput: pair[1]}
		require.NoError(t, db.Create(&testCase).Error)
	}
	return question
}
