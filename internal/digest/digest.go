// Package digest computes the fixed-width fingerprints used as manifest keys
// (over absolute paths) and as content fingerprints (over file bytes).
//
// Digests are MD5, rendered as 32 lowercase hex characters. Collision
// resistance is not part of the threat model; stability across runs and
// platforms is.
package digest

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/multiformats/go-multihash"
)

// Size is the length of a rendered digest.
const Size = 32

// Sum returns the hex digest of data.
func Sum(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.MD5, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("decoding multihash: %w", err)
	}
	return hex.EncodeToString(decoded.Digest), nil
}

// Path returns the manifest key for an absolute path.
func Path(absPath string) (string, error) {
	return Sum([]byte(absPath))
}

// File reads the whole file into memory and returns its content digest.
// There is no streaming path; very large files cost their size in memory.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Sum(data)
}

// Valid reports whether s looks like a rendered digest.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
