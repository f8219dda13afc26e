package auth

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt cost factor used for all account passwords.
const hashCost = 10

// HashPassword generates a salted one-way hash of the given password.
// Hashing the same password twice yields different hashes.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether the cleartext password matches the stored
// hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
