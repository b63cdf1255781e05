package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ampersand-agent/internal/bootstrap"
	"ampersand-agent/internal/config"
	"ampersand-agent/internal/controller"
	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/service"
	"ampersand-agent/pkg/mode"
	"ampersand-agent/pkg/rag/executor"
	"ampersand-agent/pkg/rag/history"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	asked []executor.InboundQuery
	event *service.InboundEvent
	err   error
}

func (f *fakeService) HandleEvent(ctx context.Context, event service.InboundEvent, replier service.Replier) error {
	f.event = &event
	if err := replier.Reply(ctx, "first"); err != nil {
		return err
	}
	return replier.Send(ctx, "second")
}

func (f *fakeService) Ask(ctx context.Context, q executor.InboundQuery) (string, error) {
	f.asked = append(f.asked, q)
	if f.err != nil {
		return "", f.err
	}
	if q.ModeName != "" {
		if _, err := mustCatalog().Lookup(q.ModeName); err != nil {
			return "", err
		}
	}
	return "reply to " + q.Query, nil
}

func (f *fakeService) Memory(ctx context.Context, conversationID string) ([]history.Message, string) {
	return []history.Message{{Role: "user", Content: "hi", Timestamp: time.Unix(0, 0).UTC()}}, "old summary"
}

func (f *fakeService) Modes() []mode.Mode {
	return mustCatalog().Modes()
}

func mustCatalog() *mode.Catalog {
	c, err := mode.DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func newTestServer(svc service.IChatbotService, jwtSecret string) *Server {
	cfg := &config.Config{App: config.AppConfig{Port: "0", JWTSecret: jwtSecret, CorsAllowedOrigins: "*"}}
	container := &bootstrap.Container{
		Logger:                 logger.NewNopLogger(),
		ConversationController: controller.NewConversationController(svc),
		HealthController:       controller.NewHealthController(),
	}
	return New(cfg, container)
}

func do(t *testing.T, s *Server, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := s.GetApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeService{}, "secret")

	resp, err := s.GetApp().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAsk(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, "")

	status, env := do(t, s, jsonRequest(http.MethodPost, "/api/conversations/room-1/queries",
		`{"query":"what is go?","mode":"research","force_search":true}`))

	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"conversation_id":"room-1","reply":"reply to what is go?"}`, string(env.Data))
	require.Len(t, svc.asked, 1)
	assert.Equal(t, executor.InboundQuery{ConversationID: "room-1", Query: "what is go?", ForceSearch: true, ModeName: "research"}, svc.asked[0])
}

func TestAskValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"mode":"research"}`},
		{"unknown mode", `{"query":"x","mode":"poetry"}`},
		{"malformed body", `{"query":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			s := newTestServer(svc, "")

			status, env := do(t, s, jsonRequest(http.MethodPost, "/api/conversations/room-1/queries", tt.body))

			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
			assert.Empty(t, svc.asked)
		})
	}
}

func TestAskServiceFailure(t *testing.T) {
	s := newTestServer(&fakeService{err: errors.New("boom")}, "")

	status, env := do(t, s, jsonRequest(http.MethodPost, "/api/conversations/room-1/queries", `{"query":"hi"}`))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestPushEvent(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(svc, "")

	status, env := do(t, s, jsonRequest(http.MethodPost, "/api/conversations/room-2/events",
		`{"content":"<@1> explain","reference":{"content":"quantum tunnelling","author_is_self":false}}`))

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"replies":["first","second"]}`, string(env.Data))
	require.NotNil(t, svc.event)
	assert.Equal(t, "room-2", svc.event.ChannelID)
	require.NotNil(t, svc.event.Reference)
	assert.Equal(t, "quantum tunnelling", svc.event.Reference.Content)
}

func TestMemoryAndModes(t *testing.T) {
	s := newTestServer(&fakeService{}, "")

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/conversations/room-3/memory", nil))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"conversation_id":"room-3","window":[{"role":"user","content":"hi","timestamp":"1970-01-01T00:00:00Z"}],"summary":"old summary"}`, string(env.Data))

	status, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/modes", nil))
	require.Equal(t, http.StatusOK, status)
	var modes []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &modes))
	require.Len(t, modes, 5)
	assert.Equal(t, "synoptic", modes[0]["name"])
	assert.Equal(t, "[**Synoptic Mode**]", modes[0]["label"])
}

func TestJwtProtectsAPI(t *testing.T) {
	s := newTestServer(&fakeService{}, "secret")

	status, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/modes", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing token", env.Message)

	bad := httptest.NewRequest(http.MethodGet, "/api/modes", nil)
	bad.Header.Set("Authorization", "Bearer not-a-token")
	status, _ = do(t, s, bad)
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	good := httptest.NewRequest(http.MethodGet, "/api/modes", nil)
	good.Header.Set("Authorization", "Bearer "+token)
	status, env = do(t, s, good)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}
