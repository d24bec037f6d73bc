package journal

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSnapshot prefixes snapshot hashes. The version suffix leaves room to
// change the encoding later.
const DomainSnapshot = "battle/snapshot/v1"

// HashState computes SHA256(DomainSnapshot + 0x00 + stateJSON) as hex.
func HashState(stateJSON []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	h.Write(stateJSON)
	return hex.EncodeToString(h.Sum(nil))
}
