package util

import (
	"strings"
	"unicode"
)

func RemoveDuplicateStrings(strings []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range strings {
		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}

// IsDigitsOnly reports whether s is a non-empty run of ASCII digits
func IsDigitsOnly(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// FoldIdentifier lower-cases s and collapses its whitespace so raw feed
// aliases like "CANADA LINE  SKYTRAIN" compare equal to configured ones
func FoldIdentifier(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), " ")
}
