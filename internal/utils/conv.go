package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns fallback if error
func StringToInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

// ParseID parses a positive numeric identifier from a path or query value.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
