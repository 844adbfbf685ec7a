// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

// Condition is a single column equality test.
type Condition struct {
	Column string
	Value  any
}

// Order sorts results by one column.
type Order struct {
	Column string
	Desc   bool
}

// Filter selects rows by equality, optionally ordered and limited.
// The zero value matches every row.
type Filter struct {
	Conditions []Condition
	Orders     []Order
	// Limit caps the number of rows returned; zero means no limit.
	Limit int
}

// Where starts a filter with one equality condition.
func Where(column string, value any) Filter {
	return Filter{}.And(column, value)
}

// And adds an equality condition.
func (f Filter) And(column string, value any) Filter {
	f.Conditions = append(append([]Condition(nil), f.Conditions...), Condition{Column: column, Value: value})
	return f
}

// OrderBy appends a sort key.
func (f Filter) OrderBy(column string, desc bool) Filter {
	f.Orders = append(append([]Order(nil), f.Orders...), Order{Column: column, Desc: desc})
	return f
}

// Take sets the row limit.
func (f Filter) Take(limit int) Filter {
	f.Limit = limit
	return f
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Conditions) == 0
}
