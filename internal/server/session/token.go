package session

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

const base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// NewToken returns a random base58 token of length characters.
// 24 characters give about 140 bits of entropy.
func NewToken(length int) (string, error) {
	if length < 1 {
		return "", errors.Errorf("invalid token length: %d", length)
	}

	token := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(token) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "could not read random bytes")
		}

		for _, b := range buf {
			// Bytes above the last multiple of 58 would bias the first letters.
			if int(b) >= 4*len(base58) {
				continue
			}

			token = append(token, base58[int(b)%len(base58)])
			if len(token) == length {
				break
			}
		}
	}

	return string(token), nil
}
