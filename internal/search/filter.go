// Package search holds the client-side filtering the storefront and admin
// list views share: case-folded substring matching over already-fetched
// collections, category equality, and the recent-search history.
package search

import (
	"strings"
	"unicode/utf8"
)

// LiveSearchMinLength is the query length a live-search widget requires
// before it filters at all; shorter queries return nothing. List views use
// Filter instead, which matches any non-empty query.
const LiveSearchMinLength = 3

// LiveSearchLimit caps the suggestions a live-search widget shows.
const LiveSearchLimit = 5

// Filter returns the items for which at least one of the strings produced by
// fields contains query as a case-folded substring, preserving input order.
// An empty or whitespace-only query returns the input unfiltered.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), query) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

// ByCategory returns the items whose category equals the selection. The
// sentinel values "all" and "All" (and an empty selection) disable the
// filter, matching how the storefront and blog pages treat their defaults.
func ByCategory[T any](items []T, selected string, category func(T) string) []T {
	if selected == "" || strings.EqualFold(selected, "all") {
		return items
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if category(item) == selected {
			matched = append(matched, item)
		}
	}
	return matched
}

// LiveSearch filters items for a type-ahead widget: queries shorter than
// LiveSearchMinLength yield no suggestions, and at most LiveSearchLimit
// matches are returned. The threshold counts runes, not bytes, so multibyte
// input is not searched early.
func LiveSearch[T any](items []T, query string, fields func(T) []string) []T {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < LiveSearchMinLength {
		return []T{}
	}

	matched := Filter(items, query, fields)
	if len(matched) > LiveSearchLimit {
		matched = matched[:LiveSearchLimit]
	}
	return matched
}
