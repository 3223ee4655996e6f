package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// languageIDs is the canonical mapping from language name to the judge's
// language id. A submission in a language not listed here is rejected before
// anything is dispatched.
var languageIDs = map[string]int{
	"c":          103,
	"c++":        105,
	"java":       91,
	"javascript": 102,
	"python":     109,
	"rust":       108,
}

// LanguageID resolves a language name (case-insensitive) to the judge's
// language id. Unknown names return ErrUnsupportedLanguage.
func LanguageID(name string) (int, error) {
	id, ok := languageIDs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("language %q: %w", name, ErrUnsupportedLanguage)
	}
	return id, nil
}

// SupportedLanguages returns the accepted language names in sorted order.
func SupportedLanguages() []string {
	names := make([]string, 0, len(languageIDs))
	for name := range languageIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateLanguages checks the static language table against the set of
// languages the judge actually serves, so a drifting table is caught at
// startup instead of surfacing as dispatch errors at submit time.
func ValidateLanguages(ctx context.Context, c *Client) error {
	offered, err := c.Languages(ctx)
	if err != nil {
		return fmt.Errorf("listing judge languages: %w", err)
	}
	known := make(map[int]bool, len(offered))
	for _, lang := range offered {
		known[lang.ID] = true
	}
	for name, id := range languageIDs {
		if !known[id] {
			return fmt.Errorf("language %q (id %d) is not offered by the judge", name, id)
		}
	}
	return nil
}
