package security

import "golang.org/x/crypto/bcrypt"

// hashCost is pinned: changing it only affects new hashes, existing ones
// keep the cost recorded in the hash itself.
const hashCost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), hashCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
