// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/spark/internal/platform/constants"
)

func sessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SessionCookie renders the Set-Cookie value carrying a session id.
func SessionCookie(sessionID string, secure bool) string {
	return sessionCookie(sessionID, int(constants.SessionTTL.Seconds()), secure).String()
}

// AppendSessionCookie adds a session cookie to header without replacing any
// Set-Cookie value already present.
func AppendSessionCookie(header http.Header, sessionID string, secure bool) {
	header.Add(constants.HeaderSetCookie, SessionCookie(sessionID, secure))
}

// ClearSessionCookie adds a Set-Cookie value that deletes the session cookie.
func ClearSessionCookie(header http.Header, secure bool) {
	header.Add(constants.HeaderSetCookie, sessionCookie("", -1, secure).String())
}
