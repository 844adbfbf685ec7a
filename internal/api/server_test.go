// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/api"
	"github.com/taibuivan/spark/internal/platform/config"
	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/posts"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/internal/users/account"
	"github.com/taibuivan/spark/internal/users/auth"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Mode  string          `json:"mode"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

type postPayload struct {
	Post posts.Post `json:"post"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T, deps api.HealthDependencies) *client {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	cfg, err := config.LoadFrom(map[string]string{"TOKEN_SECRET": "test-secret"})
	require.NoError(t, err)

	tokens, err := sec.NewTokenService(cfg.TokenSecret, constants.AuthIssuer, constants.TokenTTL)
	require.NoError(t, err)

	options := append(auth.UniqueKeys(), posts.UniqueKeys()...)
	local := storage.NewMemoryBackend(logger, options...)
	failover := storage.NewFailover(nil, local, time.Second, logger)

	users := auth.NewIdentityRepository(failover)
	authService := auth.NewService(users, auth.NewSessionStore(local), tokens)
	postRepository := posts.NewRepository(failover)
	postService := posts.NewService(postRepository, posts.NewReconciler(failover))

	router := api.NewRouter(cfg, logger, tokens, authService, api.Handlers{
		Health:  api.NewHealthHandler(deps, logger),
		Auth:    auth.NewHandler(authService, false),
		Posts:   posts.NewHandler(postService),
		Account: account.NewHandler(account.NewService(users, postRepository)),
	})
	return &client{t: t, handler: router}
}

func (c *client) do(method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	for name, value := range headers {
		request.Header.Set(name, value)
	}
	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, request)

	var decoded envelope
	if recorder.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder, decoded
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(raw, &value))
	return value
}

func TestServer_AliceAndBob(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})

	recorder, body := c.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)
	alice := decode[credentials](t, body.Data)
	assert.NotEmpty(t, alice.Token)
	assert.Equal(t, "demo", body.Mode)
	assert.Contains(t, recorder.Header().Get("Set-Cookie"), "session=")

	recorder, body = c.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, decode[credentials](t, body.Data).Token)

	recorder, _ = c.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, body = c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, bearer(alice.Token))
	require.Equal(t, http.StatusCreated, recorder.Code)
	created := decode[postPayload](t, body.Data).Post
	assert.Equal(t, 0, created.Score)

	recorder, body = c.do(http.MethodPost, "/api/auth/register", `{"username":"bob","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)
	bob := decode[credentials](t, body.Data)

	votePath := "/api/posts/" + created.ID + "/vote"

	recorder, body = c.do(http.MethodPost, votePath, `{"voteType":"up"}`, bearer(bob.Token))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, decode[postPayload](t, body.Data).Post.Score)

	recorder, body = c.do(http.MethodPost, votePath, `{"voteType":"up"}`, bearer(bob.Token))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 0, decode[postPayload](t, body.Data).Post.Score)
}

func TestServer_DuplicateRegistration(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})

	recorder, _ := c.do(http.MethodPost, "/api/auth/signup", `{"username":"alice","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder, body := c.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"Other456!"}`, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestServer_SessionCookie(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})

	recorder, _ := c.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	cookies := recorder.Result().Cookies()
	require.NotEmpty(t, cookies)
	cookie := map[string]string{"Cookie": cookies[0].Name + "=" + cookies[0].Value}

	recorder, body := c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, cookie)
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "alice", decode[postPayload](t, body.Data).Post.Author.Username)

	recorder, _ = c.do(http.MethodPost, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Set-Cookie"), "Max-Age=0")

	recorder, _ = c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, cookie)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_LegacyToken(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})
	legacy := sec.EncodeLegacyToken(sec.Identity{Username: "carol", UserID: "u-carol"})

	recorder, body := c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, bearer(legacy))
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "u-carol", decode[postPayload](t, body.Data).Post.Author.UserID)

	recorder, _ = c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, bearer("not a token"))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestServer_Profile(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})

	recorder, body := c.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"Secret123!"}`, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)
	alice := decode[credentials](t, body.Data)

	recorder, _ = c.do(http.MethodPost, "/api/posts", `{"title":"X","content":"Y"}`, bearer(alice.Token))
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder, body = c.do(http.MethodGet, "/api/user?username=alice", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	page := decode[account.ProfilePage](t, body.Data)
	assert.Equal(t, alice.UserID, page.User.UserID)
	assert.Equal(t, 1, page.User.PostCount)

	recorder, body = c.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	directory := decode[struct {
		Count int `json:"count"`
	}](t, body.Data)
	assert.Equal(t, 1, directory.Count)
}

func TestServer_Routing(t *testing.T) {
	c := newClient(t, api.HealthDependencies{})

	recorder, body := c.do(http.MethodDelete, "/api/posts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Code)

	recorder, _ = c.do(http.MethodGet, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	recorder, body = c.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestServer_Probes(t *testing.T) {
	c := newClient(t, api.HealthDependencies{
		CheckRemote: func(context.Context) error { return errors.New("connection refused") },
	})

	recorder, body := c.do(http.MethodGet, "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	ping := decode[map[string]string](t, body.Data)
	assert.Equal(t, "ok", ping["status"])
	assert.NotEmpty(t, ping["timestamp"])

	recorder, _ = c.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, body = c.do(http.MethodGet, "/ready", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	ready := decode[map[string]any](t, body.Data)
	assert.Equal(t, "degraded", ready["status"])
	assert.Equal(t, "demo", ready["mode"])
}
