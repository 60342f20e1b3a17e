package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies passwords with bcrypt. It is
// stateless and safe for unlimited concurrent use. Construct one and
// pass it into the Service; there is no package-level instance.
type PasswordHasher struct{ cost int }

// NewPasswordHasher returns a hasher with the given bcrypt cost. Costs
// below bcrypt.DefaultCost are raised to it so a misconfigured
// deployment cannot weaken stored hashes.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of plain. Output differs between calls
// for the same input because bcrypt salts internally.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares a bcrypt hash and a plain password. A
// malformed hash fails closed: the answer is false, never an error.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
