package auth

import "crypto/subtle"

// ValidateAPIKey compares a presented API key against the configured one in
// constant time so the comparison does not leak the match position.
func ValidateAPIKey(presented, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}
