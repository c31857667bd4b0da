package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted bcrypt digest from a plaintext password.
// The cost factor is fixed per deployment.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares a plaintext password against a stored digest.
// bcrypt's comparison does not short-circuit on the first mismatch.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
