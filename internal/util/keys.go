package util

import (
	"crypto/sha256"
	"fmt"
)

// ContentKey returns a deterministic storage key for content decoded under the
// given variant (decode policy and dataset checks), with a short hash.
func ContentKey(prefix, variant string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write(content)
	sum := h.Sum(nil)
	return fmt.Sprintf("%s:%x", prefix, sum[:16]) // prefix + ":" + 32 hex chars
}
