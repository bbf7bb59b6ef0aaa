package common

import (
	"fmt"
	"regexp"
)

// MerchantMatcher compiles a case-insensitive pattern into a predicate.
// An empty pattern matches everything.
func MerchantMatcher(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant pattern %q: %w", pattern, err)
	}
	return re.MatchString, nil
}
