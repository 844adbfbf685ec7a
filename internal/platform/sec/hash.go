// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor. Change it at build time only: existing
// hashes keep the cost they were created with.
const PasswordCost = 10

// derivedIDHexLength keeps 128 bits of the digest for derived user ids.
const derivedIDHexLength = 32

// DerivedIDPrefix marks user ids that were derived instead of registered.
const DerivedIDPrefix = "derived-"

// HashPassword hashes a plain-text password using the bcrypt algorithm.
// The salt is embedded in the returned hash.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// A malformed or empty stored hash simply yields false.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	if existingHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// DeriveIdentity produces a stable pseudo-identity for a client that has no
// registered account. The same credentials always map to the same user id.
func DeriveIdentity(username, password string) Identity {
	digest := sha256.Sum256([]byte(username + ":" + password))
	return Identity{
		UserID:   DerivedIDPrefix + hex.EncodeToString(digest[:])[:derivedIDHexLength],
		Username: username,
	}
}
