// Package password wraps bcrypt hashing and verification of user passwords.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. Brute-force cost doubles with each increment.
const Cost = 10

var ErrEmptyPassword = errors.New("password must not be empty")

// Hash derives a salted one-way digest of the plaintext. The output differs
// between calls for the same input; use Verify to compare.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares a plaintext password against a stored digest. A wrong
// password returns (false, nil); an error is returned only when the digest
// itself cannot be parsed (corrupt storage value).
func Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
