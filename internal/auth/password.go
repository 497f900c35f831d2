package auth

import "golang.org/x/crypto/bcrypt"

// HashOTP hashes a login code with configured cost.
func HashOTP(code string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareOTP verifies a code against its hashed value.
func CompareOTP(hashed, code string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(code))
}
