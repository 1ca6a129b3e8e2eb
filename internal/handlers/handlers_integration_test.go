package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerador/internal/database"
	"gerador/internal/handlers"
	"gerador/internal/logger"
	"gerador/internal/middleware"
	"gerador/internal/models"
	"gerador/internal/repositories"
	"gerador/internal/services"
)

const testJWTSecret = "handlers_test_secret"

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testEnv struct {
	app  *fiber.App
	auth *services.AuthService
}

// setupApp wires every handler against a fresh in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	userRepo := repositories.NewGORMUserRepository(db, time.Second)
	formRepo := repositories.NewGORMFormRepository(db, time.Second)
	logRepo := repositories.NewGORMProcessingLogRepository(db, time.Second)

	authService := services.NewAuthService(userRepo, testJWTSecret, time.Hour)
	logService := services.NewProcessingLogService(logRepo)
	formService := services.NewFormService(formRepo, services.NewSubmissionPolicy(formRepo), logService, nil)
	userService := services.NewUserService(userRepo, formRepo, logRepo)

	app := fiber.New()
	api := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewFormHandler(formService, authService, middleware.NewRateLimiter(1000, 1000)).RegisterRoutes(api)
	handlers.NewUserHandler(userService, authService).RegisterRoutes(api)
	handlers.NewProcessingLogHandler(logService, authService).RegisterRoutes(api)

	return &testEnv{app: app, auth: authService}
}

// do sends a JSON request and decodes the JSON reply into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signUp registers a user through the API and returns a login token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	status := e.do(t, http.MethodPost, "/api/v1/auth/register", "", models.UserCreate{
		Email:    email,
		FullName: "Test User",
		Password: "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var token handlers.TokenResponse
	status = e.do(t, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{
		Email:    email,
		Password: "password123",
	}, &token)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

// admin creates an administrator directly through the service.
func (e *testEnv) admin(t *testing.T) (uint, string) {
	t.Helper()
	user, err := e.auth.RegisterUser(models.UserCreate{
		Email:    "admin@example.com",
		FullName: "Admin",
		Password: "adminpass",
		IsAdmin:  true,
	})
	require.NoError(t, err)
	token, err := e.auth.IssueToken(user)
	require.NoError(t, err)
	return user.ID, token
}

func nameForm(public, onePerUser bool) map[string]any {
	return map[string]any{
		"title": "Contact",
		"fields": []map[string]any{{
			"id":       "name",
			"type":     "text",
			"label":    "Name",
			"required": true,
			"validation": []map[string]any{
				{"rule": "min_length", "value": 2},
			},
		}},
		"settings": map[string]any{
			"is_public":             public,
			"one_response_per_user": onePerUser,
		},
	}
}

func (e *testEnv) createForm(t *testing.T, token string, body map[string]any) models.Form {
	t.Helper()
	var form models.Form
	status := e.do(t, http.MethodPost, "/api/v1/forms/", token, body, &form)
	require.Equal(t, http.StatusCreated, status)
	require.NotZero(t, form.ID)
	return form
}

func TestAuthFlow(t *testing.T) {
	env := setupApp(t)
	token := env.signUp(t, "ann@example.com")

	var me models.User
	status := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.False(t, me.IsAdmin)

	status = env.do(t, http.MethodPost, "/api/v1/auth/register", "", models.UserCreate{
		Email: "ann@example.com", FullName: "Other", Password: "password123",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = env.do(t, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{
		Email: "ann@example.com", Password: "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var refreshed handlers.TokenResponse
	status = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "", handlers.RefreshRequest{Token: token}, &refreshed)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "bearer", refreshed.TokenType)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil, nil))
}

func TestRegister_Validation(t *testing.T) {
	env := setupApp(t)

	var body map[string]any
	status := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "not-an-email"}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "Email")
}

func TestCreateForm_RejectsBadSchema(t *testing.T) {
	env := setupApp(t)
	token := env.signUp(t, "owner@example.com")

	var body map[string]any
	status := env.do(t, http.MethodPost, "/api/v1/forms/", token, map[string]any{
		"title": "Broken",
		"fields": []map[string]any{
			{"id": "color", "type": "select", "label": "Color"},
		},
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "color", body["field"])

	status = env.do(t, http.MethodPost, "/api/v1/forms/", "", nameForm(true, true), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSubmitResponse_Pipeline(t *testing.T) {
	env := setupApp(t)
	owner := env.signUp(t, "owner@example.com")
	respondent := env.signUp(t, "resp@example.com")
	form := env.createForm(t, owner, nameForm(true, true))
	submitPath := fmt.Sprintf("/api/v1/forms/%d/submit", form.ID)

	var body map[string]any
	status := env.do(t, http.MethodPost, submitPath, respondent, map[string]any{"answers": map[string]any{}}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name", body["field"])
	assert.Equal(t, "Field 'Name' is required", body["error"])

	body = nil
	status = env.do(t, http.MethodPost, submitPath, respondent, map[string]any{"answers": map[string]any{"name": "A"}}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "min_length", body["rule"])

	body = nil
	status = env.do(t, http.MethodPost, submitPath, respondent, map[string]any{"answers": map[string]any{"name": "Ann", "extra": 1}}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "extra", body["field"])

	var saved models.FormResponse
	status = env.do(t, http.MethodPost, submitPath, respondent, map[string]any{
		"answers":  map[string]any{"name": "Ann"},
		"metadata": map[string]any{"source": "web"},
	}, &saved)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, form.ID, saved.FormID)
	require.NotNil(t, saved.RespondentID)
	assert.Equal(t, models.TextValue("Ann"), saved.Answers["name"])

	status = env.do(t, http.MethodPost, submitPath, respondent, map[string]any{"answers": map[string]any{"name": "Ann"}}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Anonymous callers bypass the one-response-per-user check.
	for i := 0; i < 2; i++ {
		status = env.do(t, http.MethodPost, submitPath, "", map[string]any{"answers": map[string]any{"name": "Guest"}}, nil)
		assert.Equal(t, http.StatusCreated, status)
	}

	var responses []models.FormResponse
	status = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/forms/%d/responses", form.ID), owner, nil, &responses)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, responses, 3)

	status = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/forms/%d/responses", form.ID), respondent, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSubmitResponse_RepeatAllowed(t *testing.T) {
	env := setupApp(t)
	owner := env.signUp(t, "owner@example.com")
	form := env.createForm(t, owner, nameForm(true, false))
	submitPath := fmt.Sprintf("/api/v1/forms/%d/submit", form.ID)

	for i := 0; i < 2; i++ {
		status := env.do(t, http.MethodPost, submitPath, owner, map[string]any{"answers": map[string]any{"name": "Ann"}}, nil)
		assert.Equal(t, http.StatusCreated, status)
	}
}

func TestSubmitResponse_LongClientInput(t *testing.T) {
	env := setupApp(t)
	owner := env.signUp(t, "owner@example.com")
	form := env.createForm(t, owner, nameForm(true, false))
	submitPath := fmt.Sprintf("/api/v1/forms/%d/submit", form.ID)

	payload, err := json.Marshal(map[string]any{"answers": map[string]any{"name": "Ann"}})
	require.NoError(t, err)
	userAgent := "Mozilla/5.0 " + strings.Repeat("x", 288)
	req := httptest.NewRequest(http.MethodPost, submitPath, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var saved models.FormResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, userAgent, saved.UserAgent)

	longEmail := strings.Repeat("a", 60) + "@" + strings.Repeat(strings.Repeat("b", 60)+".", 4) + "com"
	var body map[string]any
	status := env.do(t, http.MethodPost, submitPath, "", map[string]any{
		"answers": map[string]any{"name": "Ann"},
		"email":   longEmail,
	}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "Email")
}

func TestPrivateForm_Access(t *testing.T) {
	env := setupApp(t)
	owner := env.signUp(t, "owner@example.com")
	stranger := env.signUp(t, "stranger@example.com")
	form := env.createForm(t, owner, nameForm(false, true))
	formPath := fmt.Sprintf("/api/v1/forms/%d", form.ID)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, formPath, owner, nil, nil))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, formPath, stranger, nil, nil))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, formPath, "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/forms/9999", owner, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/forms/abc", owner, nil, nil))

	status := env.do(t, http.MethodPost, formPath+"/submit", stranger, map[string]any{"answers": map[string]any{"name": "Bob"}}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var anonList []models.Form
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/forms/", "", nil, &anonList))
	assert.Empty(t, anonList)

	var mine []models.Form
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/forms/user/forms", owner, nil, &mine))
	assert.Len(t, mine, 1)
}

func TestUpdateAndDeleteForm(t *testing.T) {
	env := setupApp(t)
	owner := env.signUp(t, "owner@example.com")
	stranger := env.signUp(t, "stranger@example.com")
	form := env.createForm(t, owner, nameForm(true, true))
	formPath := fmt.Sprintf("/api/v1/forms/%d", form.ID)

	status := env.do(t, http.MethodPut, formPath, stranger, map[string]any{"title": "Hijacked"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var updated models.Form
	status = env.do(t, http.MethodPut, formPath, owner, map[string]any{"title": "Renamed", "is_active": false}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, updated.IsActive)

	var body map[string]any
	status = env.do(t, http.MethodPost, formPath+"/submit", owner, map[string]any{"answers": map[string]any{"name": "Ann"}}, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, formPath, stranger, nil, nil))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, formPath, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, formPath, owner, nil, nil))
}

func TestAdminRoutes(t *testing.T) {
	env := setupApp(t)
	adminID, adminToken := env.admin(t)
	userToken := env.signUp(t, "ann@example.com")

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/users/", userToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/v1/processing-logs/", userToken, nil, nil))

	var users []models.User
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/users/", adminToken, nil, &users))
	require.Len(t, users, 2)
	var annID uint
	for _, u := range users {
		if u.Email == "ann@example.com" {
			annID = u.ID
		}
	}
	require.NotZero(t, annID)

	status := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/block", adminID), adminToken, handlers.BlockRequest{Reason: "self"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var blocked models.User
	status = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/block", annID), adminToken, handlers.BlockRequest{Reason: "spam"}, &blocked)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, blocked.IsActive)

	status = env.do(t, http.MethodPost, "/api/v1/auth/login", "", handlers.LoginRequest{Email: "ann@example.com", Password: "password123"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", adminID), adminToken, nil, nil))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", annID), adminToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", annID), adminToken, nil, nil))
}

func TestProcessingLogs(t *testing.T) {
	env := setupApp(t)
	_, adminToken := env.admin(t)
	owner := env.signUp(t, "owner@example.com")
	env.createForm(t, owner, nameForm(true, true))

	var me models.User
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/auth/me", owner, nil, &me))

	status := env.do(t, http.MethodPost, "/api/v1/processing-logs/", owner, handlers.CreateLogRequest{
		Action: "export", Details: "csv", Status: "success",
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	var logs []models.ProcessingLog
	status = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/processing-logs/user/%d", me.ID), owner, nil, &logs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, logs, 2)
	actions := []string{logs[0].Action, logs[1].Action}
	assert.ElementsMatch(t, []string{services.ActionFormCreate, "export"}, actions)

	stranger := env.signUp(t, "stranger@example.com")
	status = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/processing-logs/user/%d", me.ID), stranger, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var all []models.ProcessingLog
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/processing-logs/", adminToken, nil, &all))
	assert.Len(t, all, 2)
}
