package cache

import "github.com/howard-nolan/questionrouter/internal/question"

// normalizeContentForLookup and normalizeOptionsForLookup centralize the
// single call site where cache.Store applies internal/question's
// normalization rules before using content/options as a lookup key,
// keeping postgres.go's SQL-building code free of that concern.
func normalizeContentForLookup(content string) string {
	return question.NormalizeText(content)
}

func normalizeOptionsForLookup(options []string) []string {
	return question.NormalizeOptions(options)
}
