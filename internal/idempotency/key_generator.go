// Package idempotency suppresses duplicate processing of updates,
// double-tapped inline buttons in particular.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateKey builds a deterministic key using all provided parts.
func GenerateKey(parts ...interface{}) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%v:", part)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// CallbackKey builds the dedup key for one inline button press. The
// callback ID is unique per press, so retries of the same press map to
// the same key while distinct presses never collide.
func CallbackKey(userID int64, callbackID string) string {
	return GenerateKey("callback", userID, callbackID)
}
