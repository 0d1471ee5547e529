package security

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plain text password with bcrypt (adaptive cost).
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored bcrypt hash with a candidate password.
// Registration and password-change both go through this pair, so the
// hashing scheme can never drift between the two flows.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
