// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	requestutil "github.com/taibuivan/spark/internal/platform/request"
)

func TestParseCookies(t *testing.T) {
	cookies := requestutil.ParseCookies(" session=abc123 ; theme=dark%20mode;flag; broken=%zz; empty=")

	assert.Equal(t, "abc123", cookies["session"])
	assert.Equal(t, "dark mode", cookies["theme"])
	assert.Equal(t, "%zz", cookies["broken"])
	assert.Equal(t, "", cookies["empty"])
	assert.NotContains(t, cookies, "flag")

	assert.Empty(t, requestutil.ParseCookies(""))
}

func TestSessionID(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, requestutil.SessionID(request))

	request.Header.Set("Cookie", "theme=dark; session=a%2Bb")
	assert.Equal(t, "a+b", requestutil.SessionID(request))
}
