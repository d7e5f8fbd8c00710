package repository

import (
	"strconv"
	"strings"
)

const (
	articlePrefix = "article"
	articleSuffix = ".json"
)

// ArticleFilename returns the document name for id, e.g. article12.json.
func ArticleFilename(id int) string {
	return articlePrefix + strconv.Itoa(id) + articleSuffix
}

// ParseArticleFilename extracts the ID from a well-formed article filename.
// Only positive decimal IDs without sign or leading zeros are accepted, so
// every accepted name round-trips through ArticleFilename.
func ParseArticleFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, articlePrefix) || !strings.HasSuffix(name, articleSuffix) {
		return 0, false
	}
	digits := name[len(articlePrefix) : len(name)-len(articleSuffix)]
	if digits == "" || digits[0] == '0' {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// NextID returns max(ids)+1, or 1 for an empty set.
// Gaps below the maximum are never filled; deleting the highest ID frees it
// for the next allocation.
func NextID(ids []int) int {
	next := 1
	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	return next
}
