// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// Page bounds applied to list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParsePage parses raw page and page_size values and clamps them to
// [1, ∞) and [1, MaxPageSize]. Missing or malformed values take the defaults.
func ParsePage(rawPage, rawSize string) (page, pageSize int) {
	page = AtoiDefault(rawPage, DefaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = AtoiDefault(rawSize, DefaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// TotalPages is the number of pages of pageSize needed for total items.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
