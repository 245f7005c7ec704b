// Package fingerprint computes the five digests of a payload, memoized by
// exact byte content so that identical payloads reached via different code
// paths are hashed once.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/glaslos/ssdeep"

	"mailtriage/internal/model"
)

func init() {
	// Mail attachments are routinely smaller than the ssdeep block
	// threshold; force hashing instead of rejecting them.
	ssdeep.Force = true
}

// Computer memoizes fingerprints by payload content. Safe for concurrent use
// by multiple workers. The cache is unbounded and lives as long as the
// Computer does.
type Computer struct {
	mu    sync.Mutex
	cache map[string]model.Fingerprints
}

// NewComputer returns a Computer with an empty cache.
func NewComputer() *Computer {
	return &Computer{cache: make(map[string]model.Fingerprints)}
}

// Compute returns the fingerprints of data. Repeated calls with identical
// bytes return the cached result.
func (c *Computer) Compute(data []byte) (model.Fingerprints, error) {
	key := string(data)

	c.mu.Lock()
	if fp, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return fp, nil
	}
	c.mu.Unlock()

	fuzzy, err := ssdeep.FuzzyBytes(data)
	if err != nil {
		return model.Fingerprints{}, fmt.Errorf("fuzzy hash: %w", err)
	}

	md5Sum := md5.Sum(data)
	sha1Sum := sha1.Sum(data)
	sha256Sum := sha256.Sum256(data)
	sha512Sum := sha512.Sum512(data)

	fp := model.Fingerprints{
		MD5:    hex.EncodeToString(md5Sum[:]),
		SHA1:   hex.EncodeToString(sha1Sum[:]),
		SHA256: hex.EncodeToString(sha256Sum[:]),
		SHA512: hex.EncodeToString(sha512Sum[:]),
		Fuzzy:  fuzzy,
	}

	c.mu.Lock()
	c.cache[key] = fp
	c.mu.Unlock()

	return fp, nil
}

// CacheLen reports the number of distinct payloads memoized so far.
func (c *Computer) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
