package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/adiyogi/wellness-api/database"
	"github.com/adiyogi/wellness-api/model"
	"github.com/adiyogi/wellness-api/services/therapy"
	"github.com/adiyogi/wellness-api/utils/auth"
	"github.com/adiyogi/wellness-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRunner struct {
	result *therapy.TurnResult
	err    error
	calls  int
}

func (s *stubRunner) RunTurn(ctx context.Context, issue, sessionID, userMessage string) (*therapy.TurnResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &therapy.TurnResult{
		AssistantText: "I hear you. Tell me more about that.",
		Emotion:       "calm",
		Extra:         model.JSONMap{"confidence": 0.9},
	}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestApp(t *testing.T, db *gorm.DB, runner therapy.Runner) (*fiber.App, string) {
	t.Helper()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "test",
	})

	user := model.User{
		Username:     "riya",
		Email:        "riya@example.com",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}

	token, _, err := jwtManager.GenerateAccessToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	app := fiber.New()
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	handler := NewChatHandler(db, runner)

	api := app.Group("/api")
	api.Post("/message", authMiddleware.Required(), handler.CreateMessage)
	api.Get("/session/:session_id/messages", authMiddleware.Required(), handler.GetSessionMessages)

	return app, token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
	return resp, env
}

func TestCreateMessageNewSession(t *testing.T) {
	db := newTestDB(t)
	runner := &stubRunner{}
	app, token := newTestApp(t, db, runner)

	resp, env := doJSON(t, app, http.MethodPost, "/api/message", token, fiber.Map{
		"session_id":   "sess-001",
		"issue":        "anxiety",
		"user_message": "I have been feeling overwhelmed lately.",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var sessionCount, messageCount int64
	db.Model(&model.Session{}).Count(&sessionCount)
	db.Model(&model.Message{}).Count(&messageCount)
	if sessionCount != 1 {
		t.Fatalf("expected exactly 1 session, got %d", sessionCount)
	}
	if messageCount != 2 {
		t.Fatalf("expected exactly 2 messages, got %d", messageCount)
	}
	if runner.calls != 1 {
		t.Fatalf("expected 1 therapy call, got %d", runner.calls)
	}

	var data struct {
		Session  model.Session   `json:"session"`
		Messages []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Session.SessionID != "sess-001" {
		t.Fatalf("expected session_id sess-001, got %q", data.Session.SessionID)
	}
	if len(data.Messages) != 2 {
		t.Fatalf("expected 2 messages in response, got %d", len(data.Messages))
	}
	if data.Messages[0].Role != model.MessageRoleUser || data.Messages[1].Role != model.MessageRoleAssistant {
		t.Fatalf("expected user then assistant, got %s then %s", data.Messages[0].Role, data.Messages[1].Role)
	}
	if data.Messages[1].Text != "I hear you. Tell me more about that." {
		t.Fatalf("unexpected assistant text %q", data.Messages[1].Text)
	}
	if data.Messages[1].Emotion != "calm" {
		t.Fatalf("unexpected emotion %q", data.Messages[1].Emotion)
	}
}

func TestCreateMessageReusesSession(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{})

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/message", token, fiber.Map{
			"session_id":   "sess-repeat",
			"user_message": "still here",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("turn %d: expected 201, got %d", i, resp.StatusCode)
		}
	}

	var sessionCount int64
	db.Model(&model.Session{}).Where("session_id = ?", "sess-repeat").Count(&sessionCount)
	if sessionCount != 1 {
		t.Fatalf("expected no duplicate session, got %d rows", sessionCount)
	}

	var messageCount int64
	db.Model(&model.Message{}).Count(&messageCount)
	if messageCount != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", messageCount)
	}
}

func TestCreateMessageBackfillsOwner(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{})

	// Session created before the user authenticated
	orphan := model.Session{SessionID: "sess-orphan", Issue: "sleep"}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("create orphan session: %v", err)
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/message", token, fiber.Map{
		"session_id":   "sess-orphan",
		"user_message": "I cannot sleep",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var reloaded model.Session
	if err := db.Where("session_id = ?", "sess-orphan").First(&reloaded).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.UserID == nil {
		t.Fatal("expected session owner to be backfilled")
	}
}

func TestCreateMessageValidation(t *testing.T) {
	db := newTestDB(t)
	runner := &stubRunner{}
	app, token := newTestApp(t, db, runner)

	resp, env := doJSON(t, app, http.MethodPost, "/api/message", token, fiber.Map{
		"session_id": "sess-002",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Fields["usermessage"] == "" {
		t.Fatalf("expected field error for user_message, got %+v", env.Error)
	}

	var sessionCount int64
	db.Model(&model.Session{}).Count(&sessionCount)
	if sessionCount != 0 {
		t.Fatalf("expected no session created on validation failure, got %d", sessionCount)
	}
	if runner.calls != 0 {
		t.Fatalf("expected no therapy call on validation failure, got %d", runner.calls)
	}
}

func TestCreateMessageTherapyFailure(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{err: fmt.Errorf("inference backend unreachable")})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/message", token, fiber.Map{
		"session_id":   "sess-003",
		"user_message": "hello",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 on therapy failure, got %d", resp.StatusCode)
	}
}

func TestGetSessionMessagesUnknownSession(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{})

	resp, env := doJSON(t, app, http.MethodGet, "/api/session/no-such-session/messages", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected soft-empty 200, got %d", resp.StatusCode)
	}

	var data struct {
		Session  *model.Session  `json:"session"`
		Messages []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Session != nil {
		t.Fatalf("expected null session, got %+v", data.Session)
	}
	if len(data.Messages) != 0 {
		t.Fatalf("expected empty messages, got %d", len(data.Messages))
	}
}

func TestGetSessionMessagesUnownedSession(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{})

	other := model.User{Username: "someone", Email: "someone@example.com", PasswordHash: "x"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}
	session := model.Session{SessionID: "sess-foreign", UserID: &other.ID}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create foreign session: %v", err)
	}

	resp, env := doJSON(t, app, http.MethodGet, "/api/session/sess-foreign/messages", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected soft-empty 200, got %d", resp.StatusCode)
	}

	var data struct {
		Session *model.Session `json:"session"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Session != nil {
		t.Fatal("expected null session for unowned session id")
	}
}

func TestGetSessionMessagesAscendingOrder(t *testing.T) {
	db := newTestDB(t)
	app, token := newTestApp(t, db, &stubRunner{})

	var user model.User
	if err := db.Where("username = ?", "riya").First(&user).Error; err != nil {
		t.Fatalf("load test user: %v", err)
	}

	session := model.Session{SessionID: "sess-ordered", UserID: &user.ID}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	texts := []string{"first", "second", "third"}
	for i, text := range texts {
		msg := model.Message{
			SessionID: session.ID,
			Role:      model.MessageRoleUser,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	resp, env := doJSON(t, app, http.MethodGet, "/api/session/sess-ordered/messages", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var data struct {
		Messages []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Messages) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(data.Messages))
	}
	for i, text := range texts {
		if data.Messages[i].Text != text {
			t.Fatalf("message %d: expected %q, got %q", i, text, data.Messages[i].Text)
		}
	}
}

func TestCreateMessageRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	app, _ := newTestApp(t, db, &stubRunner{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/message", "", fiber.Map{
		"session_id":   "sess-noauth",
		"user_message": "hello",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}
