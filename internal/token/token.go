// Package token generates the shared secret that guards the credential endpoint.
package token

import "crypto/rand"

// Length is the number of characters in a generated token.
const Length = 26

// Generate returns a random alphanumeric token (A-Z, 2-7) with 130 bits of
// entropy. The token lives only in memory and in the child's environment.
func Generate() string {
	return rand.Text()
}

// Resolve returns supplied when it is non-empty, otherwise a new token.
func Resolve(supplied string) string {
	if supplied != "" {
		return supplied
	}
	return Generate()
}
