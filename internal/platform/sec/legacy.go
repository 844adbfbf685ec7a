// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// EncodeLegacyToken produces the unsigned base64 "username:userId" form that
// clients received before tokens were signed. Production code never issues it;
// it exists so the accepted format is pinned down in one place.
func EncodeLegacyToken(identity Identity) string {
	return base64.StdEncoding.EncodeToString([]byte(identity.Username + ":" + identity.UserID))
}

// DecodeLegacyToken decodes an unsigned legacy token. The payload splits on
// its first separator and both halves must be non-empty.
func DecodeLegacyToken(token string) (*Identity, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(token)
		if err != nil {
			return nil, false
		}
	}

	if !utf8.Valid(decoded) {
		return nil, false
	}

	username, userID, found := strings.Cut(string(decoded), ":")
	if !found || username == "" || userID == "" {
		return nil, false
	}

	return &Identity{Username: username, UserID: userID}, true
}
