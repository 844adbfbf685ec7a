// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/spark/internal/platform/sec"
)

/*
TestPassword_RoundTrip verifies hash/verify for matching and wrong passwords.
*/
func TestPassword_RoundTrip(t *testing.T) {
	passwords := []string{"Secret123!", "p", "with spaces and ünïcode"}

	for _, password := range passwords {
		hash, err := sec.HashPassword(password)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(hash, "$2"), "hash must be algorithm-tagged")
		assert.True(t, sec.CheckPasswordHash(password, hash))
		assert.False(t, sec.CheckPasswordHash(password+"!", hash))
	}
}

/*
TestPassword_SaltedPerHash checks that equal passwords produce distinct hashes.
*/
func TestPassword_SaltedPerHash(t *testing.T) {
	first, err := sec.HashPassword("Secret123!")
	require.NoError(t, err)
	second, err := sec.HashPassword("Secret123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestCheckPasswordHash_Malformed never fails loudly on a broken stored hash.
*/
func TestCheckPasswordHash_Malformed(t *testing.T) {
	for _, stored := range []string{"", "not-a-hash", "$2a$10$short", "deadbeef"} {
		assert.False(t, sec.CheckPasswordHash("Secret123!", stored), stored)
	}
}

/*
TestDeriveIdentity is deterministic and input sensitive.
*/
func TestDeriveIdentity(t *testing.T) {
	first := sec.DeriveIdentity("alice", "Secret123!")
	again := sec.DeriveIdentity("alice", "Secret123!")
	other := sec.DeriveIdentity("alice", "Secret123?")

	assert.Equal(t, first, again)
	assert.NotEqual(t, first.UserID, other.UserID)
	assert.Equal(t, "alice", first.Username)
	assert.True(t, strings.HasPrefix(first.UserID, sec.DerivedIDPrefix))
	assert.Len(t, strings.TrimPrefix(first.UserID, sec.DerivedIDPrefix), 32)
}

/*
TestGenerateSecureToken returns hex of the requested byte length.
*/
func TestGenerateSecureToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(24)
	require.NoError(t, err)
	assert.Len(t, token, 48)

	other, err := sec.GenerateSecureToken(24)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
