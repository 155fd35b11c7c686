package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// DefaultLen is the hex length recorded for encoded outputs: 64 bits,
// plenty to tell results apart and to spot changed files on disk.
const DefaultLen = 16

// ContentHash returns the xxHash64 of data as hex, truncated to hexLen
// characters when 0 < hexLen < 16.
func ContentHash(data []byte, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(data))
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
