package utils

import "golang.org/x/crypto/bcrypt"

// Cost stays at the library default: passwords are only set through
// admin provisioning and login volume is low.
const bcryptCost = bcrypt.DefaultCost

// HashPassword hashes a password for storage on the users row.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches the stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
