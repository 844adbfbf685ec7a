// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/platform/apperr"
	"github.com/taibuivan/spark/internal/platform/constants"
	"github.com/taibuivan/spark/internal/platform/sec"
	"github.com/taibuivan/spark/internal/storage"
	"github.com/taibuivan/spark/internal/users/auth"
)

func newService(t *testing.T) (*auth.Service, *sec.TokenService) {
	t.Helper()
	tokens, err := sec.NewTokenService("test-secret", "spark.test", constants.TokenTTL)
	require.NoError(t, err)

	repository, local := newRepository(nil)
	return auth.NewService(repository, auth.NewSessionStore(local), tokens), tokens
}

func TestService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	service, tokens := newService(t)

	registered, mode, err := service.Register(ctx, auth.NewUser{Username: "alice", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, storage.ModeDemo, mode)
	assert.NotEmpty(t, registered.SessionID)

	identity, err := tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, registered.UserID, identity.UserID)

	loggedIn, _, err := service.Login(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, loggedIn.UserID)
	assert.NotEqual(t, registered.SessionID, loggedIn.SessionID)

	owner, err := service.ResolveSession(ctx, loggedIn.SessionID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "alice", owner.Username)
}

func TestService_RegisterDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	_, _, err := service.Register(ctx, auth.NewUser{Username: "alice", Password: "Secret123!"})
	require.NoError(t, err)

	_, _, err = service.Register(ctx, auth.NewUser{Username: "alice", Password: "Other123!"})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
}

func TestService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	_, _, err := service.Register(ctx, auth.NewUser{Username: "alice", Password: "Secret123!"})
	require.NoError(t, err)

	_, _, err = service.Login(ctx, "alice", "wrong-password")
	assert.True(t, apperr.HasCode(err, "UNAUTHORIZED"))
}

func TestService_LoginUnknownUserDerivesIdentity(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	first, _, err := service.Login(ctx, "ghost", "whatever")
	require.NoError(t, err)
	second, _, err := service.Login(ctx, "ghost", "whatever")
	require.NoError(t, err)

	assert.Equal(t, "ghost", first.Username)
	assert.Equal(t, sec.DeriveIdentity("ghost", "whatever").UserID, first.UserID)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t)

	credentials, _, err := service.Register(ctx, auth.NewUser{Username: "alice", Password: "Secret123!"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, credentials.SessionID))

	owner, err := service.ResolveSession(ctx, credentials.SessionID)
	require.NoError(t, err)
	assert.Nil(t, owner)
}
