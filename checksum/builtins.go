package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/zeebo/blake3"
)

type BuiltinAlgorithm = string

const (
	CRC32  BuiltinAlgorithm = "crc32"
	MD5    BuiltinAlgorithm = "md5"
	SHA1   BuiltinAlgorithm = "sha1"
	SHA256 BuiltinAlgorithm = "sha256"
	SHA512 BuiltinAlgorithm = "sha512"
	BLAKE3 BuiltinAlgorithm = "blake3"
)

// Builtins lists every built-in algorithm name
var Builtins = []BuiltinAlgorithm{CRC32, MD5, SHA1, SHA256, SHA512, BLAKE3}

// NewBuiltinRegistry returns a registry with all built-ins, or only the
// named ones if any are given
func NewBuiltinRegistry(names ...BuiltinAlgorithm) *Registry {
	r := NewRegistry()
	RegisterBuiltins(r, names...)
	return r
}

// RegisterBuiltins registers all built-in algorithms by default
// or only the specific ones if names are provided
func RegisterBuiltins(r *Registry, names ...BuiltinAlgorithm) {
	if len(names) == 0 {
		names = Builtins
	}
	for _, name := range names {
		if a, ok := builtin(name); ok {
			// builtins are always complete
			_ = r.Register(a)
		}
	}
}

func builtin(name BuiltinAlgorithm) (Algorithm, bool) {
	switch name {
	case CRC32:
		return Algorithm{
			Name: CRC32,
			New:  func() hash.Hash { return crc32.NewIEEE() },
			// 0x-prefixed, zero-padded to 8 digits
			Encode: func(sum []byte) string { return fmt.Sprintf("0x%x", sum) },
		}, true
	case MD5:
		return hexAlgorithm(MD5, md5.New), true
	case SHA1:
		return hexAlgorithm(SHA1, sha1.New), true
	case SHA256:
		return hexAlgorithm(SHA256, sha256.New), true
	case SHA512:
		return hexAlgorithm(SHA512, sha512.New), true
	case BLAKE3:
		return hexAlgorithm(BLAKE3, func() hash.Hash { return blake3.New() }), true
	}
	return Algorithm{}, false
}

func hexAlgorithm(name string, fn func() hash.Hash) Algorithm {
	return Algorithm{Name: name, New: fn, Encode: hex.EncodeToString}
}
