// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Encode converts a row struct into a [Row] using its json tags.
// Numbers come back as int64 or float64.
func Encode(value any) (Row, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("storage_encode_failed: %w", err)
	}
	return decodeRow(data)
}

// Decode fills target, a pointer to a row struct, from row.
func Decode(row Row, target any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("storage_decode_failed: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("storage_decode_failed: %w", err)
	}
	return nil
}

// DecodeAll decodes every row into a T.
func DecodeAll[T any](rows []Row) ([]T, error) {
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := Decode(row, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeRow(data []byte) (Row, error) {
	var row Row
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&row); err != nil {
		return nil, fmt.Errorf("storage_decode_failed: %w", err)
	}
	return normalizeRow(row), nil
}

func decodeRows(data []byte) ([]Row, error) {
	var rows []Row
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = normalizeRow(rows[i])
	}
	return rows, nil
}

func normalizeRow(row Row) Row {
	for column, value := range row {
		if number, ok := value.(json.Number); ok {
			row[column] = normalizeNumber(number)
		}
	}
	return row
}

func normalizeNumber(number json.Number) any {
	if i, err := number.Int64(); err == nil {
		return i
	}
	if f, err := number.Float64(); err == nil {
		return f
	}
	return number.String()
}

// # Value Comparison

// textOf renders a value the way a REST query string would.
func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// compareValues orders numbers numerically, timestamps chronologically and
// everything else lexically.
func compareValues(a, b any) int {
	if x, ok := numberOf(a); ok {
		if y, ok := numberOf(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}

	left, right := textOf(a), textOf(b)
	if x, err := time.Parse(time.RFC3339Nano, left); err == nil {
		if y, err := time.Parse(time.RFC3339Nano, right); err == nil {
			return x.Compare(y)
		}
	}
	return strings.Compare(left, right)
}

func numberOf(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return 0, false
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		return f, err == nil
	}
}
