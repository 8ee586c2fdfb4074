package maven

import (
	"crypto/md5"  // #nosec G501 -- Maven repositories require md5 sidecars
	"crypto/sha1" // #nosec G505 -- Maven repositories require sha1 sidecars
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
)

// ChecksumAlgorithms lists the sidecar extensions in upload order.
var ChecksumAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

func newHash(algorithm string) hash.Hash {
	switch algorithm {
	case "md5":
		return md5.New() // #nosec G401
	case "sha1":
		return sha1.New() // #nosec G401
	case "sha256":
		return sha256.New()
	case "sha512":
		return sha512.New()
	default:
		return nil
	}
}

// Checksum returns the lowercase hex digest of data.
func Checksum(algorithm string, data []byte) string {
	h := newHash(algorithm)
	if h == nil {
		return ""
	}
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Checksums returns every sidecar digest keyed by extension.
func Checksums(data []byte) map[string]string {
	out := make(map[string]string, len(ChecksumAlgorithms))
	for _, alg := range ChecksumAlgorithms {
		out[alg] = Checksum(alg, data)
	}
	return out
}
