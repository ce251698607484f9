package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// tokenPrefix and tokenHexLen together produce the "TKN_<hex>" convention
// from §4.9/§6.
const (
	tokenPrefix = "TKN_"
	tokenHexLen = 16
)

// Tokenize implements C9: a deterministic, keyed, one-way replacement.
// Same detector id + matched text + key always yields the same token;
// changing the key changes the token. Collisions are accepted at the
// 64-bit truncation level as a stated tradeoff (§4.9) — this is
// pseudonymization, not a collision-resistant identifier.
func Tokenize(detectorID, matchedText string, hmacKey []byte) string {
	mac := hmac.New(sha256.New, hmacKey)
	mac.Write([]byte(detectorID))
	mac.Write([]byte{':'})
	mac.Write([]byte(matchedText))
	sum := mac.Sum(nil)
	return tokenPrefix + hex.EncodeToString(sum)[:tokenHexLen]
}
