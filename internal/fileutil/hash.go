package fileutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultHashPrefixBytes bounds how many leading bytes feed HashFilePrefix.
const DefaultHashPrefixBytes = 1 << 20

// HashFilePrefix computes an MD5 digest over at most prefixBytes leading bytes
// of the file. The bounded read keeps multi-gigabyte files cheap to fingerprint
// at the cost of a theoretical collision between distinct files sharing an
// identical prefix. This trade-off is deliberate; do not replace it with a
// full-file digest.
func HashFilePrefix(path string, prefixBytes int64) (string, error) {
	if prefixBytes <= 0 {
		prefixBytes = DefaultHashPrefixBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.CopyN(hasher, f, prefixBytes); err != nil && err != io.EOF {
		return "", fmt.Errorf("read prefix: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
