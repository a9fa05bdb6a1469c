package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRating parses a 1-5 star rating from a form or query value.
func ParseRating(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("rating is required")
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("rating must be a whole number: %q", value)
	}
	if parsed < 1 || parsed > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5: %d", parsed)
	}
	return parsed, nil
}
