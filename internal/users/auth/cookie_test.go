// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/spark/internal/users/auth"
)

func TestSessionCookie(t *testing.T) {
	assert.Equal(t,
		"session=abc; Path=/; Max-Age=604800; HttpOnly; SameSite=Strict",
		auth.SessionCookie("abc", false))
	assert.Equal(t,
		"session=abc; Path=/; Max-Age=604800; HttpOnly; Secure; SameSite=Strict",
		auth.SessionCookie("abc", true))
}

func TestAppendSessionCookie_KeepsExisting(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "theme=dark; Path=/")

	auth.AppendSessionCookie(header, "abc", false)

	values := header.Values("Set-Cookie")
	assert.Len(t, values, 2)
	assert.Equal(t, "theme=dark; Path=/", values[0])
	assert.Contains(t, values[1], "session=abc")
}

func TestClearSessionCookie(t *testing.T) {
	header := http.Header{}
	auth.ClearSessionCookie(header, true)

	assert.Equal(t, "session=; Path=/; Max-Age=0; HttpOnly; Secure; SameSite=Strict", header.Get("Set-Cookie"))
}
