package domain

import (
	"strings"
	"unicode"
)

// Classify assigns a bucket. Container names win over every other signal
// because their contents are unknown until opened.
func Classify(info ItemInfo, t Tuning) Bucket {
	if matchesAny(info.Name, t.ContainerPatterns) {
		return BucketSealedContainer
	}
	if info.Class == t.QuestClass || !info.Quality.Known() {
		return BucketOther
	}
	switch {
	case info.Quality == QualityPoor:
		return BucketVendorTrash
	case info.Quality >= QualityUncommon:
		return BucketRareMulti
	}
	if isMaterial(info, t) {
		return BucketGathering
	}
	return BucketVendorTrash
}

func isMaterial(info ItemInfo, t Tuning) bool {
	if _, ok := t.MaterialWhitelist[info.ID]; ok {
		return true
	}
	if subclasses, ok := t.MaterialClasses[info.Class]; ok {
		for _, sub := range subclasses {
			if sub == info.Subclass {
				return true
			}
		}
	}
	return matchesAny(info.Name, t.MaterialPatterns)
}

// matchesAny compares patterns against whole words of name, allowing a
// plural suffix. Patterns containing spaces match as substrings.
func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(pattern, " ") {
			if strings.Contains(lower, pattern) {
				return true
			}
			continue
		}
		for _, word := range words {
			if word == pattern || word == pattern+"s" || word == pattern+"es" {
				return true
			}
		}
	}
	return false
}
