package util

import (
	"strings"
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// TrimPtr returns a trimmed copy of s, or nil when s is nil or blank.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}
