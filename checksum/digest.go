package checksum

import (
	"io"
)

// DefaultBufferSize is used by Digest when no buffer size is given
const DefaultBufferSize = 64 * 1024

// Digest reads r to the end once, feeding every algorithm, and returns the
// number of bytes read and the encoded sums keyed by algorithm name.
func Digest(r io.Reader, algos []Algorithm, bufSize int) (int64, map[string]string, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	writers := make([]io.Writer, len(algos))
	hashers := make(map[string]func() []byte, len(algos))
	for i, a := range algos {
		h := a.New()
		writers[i] = h
		hashers[a.Name] = func() []byte { return h.Sum(nil) }
	}

	n, err := io.CopyBuffer(io.MultiWriter(writers...), r, make([]byte, bufSize))
	if err != nil {
		return n, nil, err
	}

	sums := make(map[string]string, len(algos))
	for _, a := range algos {
		sums[a.Name] = a.Encode(hashers[a.Name]())
	}
	return n, sums, nil
}
