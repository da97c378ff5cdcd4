package utils

import "golang.org/x/crypto/bcrypt"

// HashAPIKey hashes an API key using bcrypt so only the hash needs to live in config.
func HashAPIKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	return string(bytes), err
}

// CheckAPIKeyHash compares a plain API key with its hashed version.
func CheckAPIKeyHash(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}
