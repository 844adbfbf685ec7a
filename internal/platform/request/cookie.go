// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/spark/internal/platform/constants"
)

// ParseCookies splits a Cookie header into name/value pairs.
//
// Parts without '=' are skipped and values are percent-decoded, keeping the
// raw value when decoding fails. A later duplicate name wins.
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		cookies[name] = value
	}
	return cookies
}

// SessionID returns the session cookie value of request, or "".
func SessionID(request *http.Request) string {
	return ParseCookies(request.Header.Get(constants.HeaderCookie))[constants.SessionCookieName]
}
