// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer provides generic pointer helpers for optional fields.
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a struct field that
// expects a pointer (e.g. pointer.To("a@spark.dev")).
func To[T any](v T) *T {
	return &v
}
