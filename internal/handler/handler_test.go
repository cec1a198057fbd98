package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/code-quest-api/internal/config"
	"github.com/noah-isme/code-quest-api/internal/database"
	"github.com/noah-isme/code-quest-api/internal/handler"
	"github.com/noah-isme/code-quest-api/internal/middleware"
	"github.com/noah-isme/code-quest-api/internal/models"
	"github.com/noah-isme/code-quest-api/internal/repository"
	"github.com/noah-isme/code-quest-api/internal/router"
	"github.com/noah-isme/code-quest-api/internal/service"
	"github.com/noah-isme/code-quest-api/pkg/piston"
)

const squareSolution = "def main(x):\n    return int(x) ** 2\n\nif __name__ == \"__main__\":\n    print(main(input()))\n"

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

// squareExecutor answers like the execution service running squareSolution. Inputs listed
// in unavailable are answered with a 503.
func squareExecutor(t *testing.T, unavailable ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Language string `json:"language"`
			Stdin    string `json:"stdin"`
			Files    []struct {
				Content string `json:"content"`
			} `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode execution request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		for _, input := range unavailable {
			if payload.Stdin == input {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"message":"runner pool exhausted"}`))
				return
			}
		}

		value, err := strconv.Atoi(strings.TrimSpace(payload.Stdin))
		if err != nil {
			_, _ = w.Write([]byte(`{"run":{"stdout":"","stderr":"ValueError: invalid literal","code":1}}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"language":%q,"run":{"stdout":"%d\n","stderr":"","code":0,"signal":null}}`, payload.Language, value*value)
	}
}

func newTestServer(t *testing.T, executor http.Handler) testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	execution := httptest.NewServer(executor)
	t.Cleanup(execution.Close)

	logger := zerolog.Nop()
	dispatcher, err := piston.NewClient(piston.Config{URL: execution.URL, HTTPTimeout: 5 * time.Second, Logger: logger})
	require.NoError(t, err)

	validate := validator.New()
	questionRepo := repository.NewQuestionRepository(db)
	testCaseRepo := repository.NewTestCaseRepository(db)
	userRepo := repository.NewUserRepository(db)
	store := service.NewSolutionStore(userRepo, repository.NewSolutionRepository(db), logger)

	grading := service.NewGradingService(questionRepo, testCaseRepo, store, dispatcher, nil, validate, service.GradingDefaults{}, logger)

	cfg := config.Config{AppName: "Code Quest API", AppEnv: "test"}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		QuestionHandler: handler.NewQuestionHandler(service.NewQuestionService(questionRepo, testCaseRepo, nil, time.Minute, logger), logger),
		SolutionHandler: handler.NewSolutionHandler(grading, store, logger),
		AuthHandler:     handler.NewAuthHandler(service.NewUserService(userRepo, validate, logger), logger),
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	})

	return testServer{app: app, db: db}
}

func (s testServer) seedQuestion(t *testing.T, title string, cases ...[2]string) models.Question {
	t.Helper()
	question := models.Question{Title: title, Difficulty: "easy", Tags: datatypes.JSONSlice[string]{"math", " warmup "}}
	require.NoError(t, s.db.Create(&question).Error)
	for _, pair := range cases {
		require.NoError(t, s.db.Create(&models.TestCase{QuestionID: question.ID, Input: pair[0], ExpectedOutput: pair[1]}).Error)
	}
	return question
}

func (s testServer) seedUser(t *testing.T, providerID string) models.User {
	t.Helper()
	user := models.User{ProviderID: providerID, Provider: "github", Email: providerID + "@example.com"}
	require.NoError(t, s.db.Create(&user).Error)
	return user
}

func (s testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch value := body.(type) {
		case string:
			reader = strings.NewReader(value)
		default:
			encoded, err := json.Marshal(value)
			require.NoError(t, err)
			reader = bytes.NewReader(encoded)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    T      `json:"data"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()
	var payload envelope[T]
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}
