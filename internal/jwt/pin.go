package jwt

import "golang.org/x/crypto/bcrypt"

const pinCost = 10

func HashPIN(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), pinCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ValidatePIN(hashedPIN, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPIN), []byte(pin)) == nil
}
