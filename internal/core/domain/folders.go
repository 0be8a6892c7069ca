package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FolderName returns the folder configured for c, or the category label when
// none is set.
func FolderName(names map[Category]string, c Category) string {
	if name := strings.TrimSpace(names[c]); name != "" {
		return name
	}
	return string(c)
}

// CheckFolderNames reports an error when two categories resolve to the same
// folder. Names are compared trimmed, case-folded and NFC normalized, so
// "Same" and " same " collide even on case-sensitive filesystems.
func CheckFolderNames(names map[Category]string) error {
	fold := cases.Fold()
	seen := make(map[string]Category, len(AllCategories()))
	for _, c := range AllCategories() {
		key := norm.NFC.String(fold.String(FolderName(names, c)))
		if other, ok := seen[key]; ok {
			return fmt.Errorf("categories %s and %s share folder %q", other, c, FolderName(names, c))
		}
		seen[key] = c
	}
	return nil
}
