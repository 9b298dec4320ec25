package invitation

import (
	"crypto/rand"
	"fmt"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 8
)

// maxUnbiased is the largest byte value that divides evenly by the
// alphabet size; bytes at or above it are rejected and redrawn so every letter is
// equally likely (plain modulo would favor A-V slightly, since 256 isn't a
// multiple of 26).
const maxUnbiased = 255 - (255 % len(codeAlphabet))

// generateCode returns eight uniform random letters from A-Z. Collisions with an existing active code are
// acceptably improbable and not deduplicated here — the store's
// GetByCode/Create path is the actual source of truth if that assumption
// ever proves wrong.
func generateCode() (string, error) {
	out := make([]byte, codeLength)
	buf := make([]byte, 1)
	for i := 0; i < codeLength; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		if int(buf[0]) >= maxUnbiased {
			continue
		}
		out[i] = codeAlphabet[int(buf[0])%len(codeAlphabet)]
		i++
	}
	return string(out), nil
}
