// Package classify determines the content type of a payload from its bytes
// alone. Classification never looks at the filename or extension.
package classify

import (
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// Sniffer is the content-sniffing collaborator contract.
type Sniffer interface {
	Classify(data []byte) (string, error)
}

// MimeSniffer classifies payloads by magic-byte detection.
type MimeSniffer struct{}

// Classify returns the detected media type without parameters, e.g.
// "text/plain" rather than "text/plain; charset=utf-8".
func (MimeSniffer) Classify(data []byte) (string, error) {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt, nil
}

// Classifier wraps a Sniffer with a content-keyed memo cache. Safe for
// concurrent use. Like the fingerprint cache, it grows without bound.
type Classifier struct {
	sniffer Sniffer

	mu    sync.Mutex
	cache map[string]string
}

// NewClassifier returns a Classifier delegating to the given sniffer.
func NewClassifier(s Sniffer) *Classifier {
	return &Classifier{sniffer: s, cache: make(map[string]string)}
}

// Classify returns the content type of data, consulting the cache first.
func (c *Classifier) Classify(data []byte) (string, error) {
	key := string(data)

	c.mu.Lock()
	if ct, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return ct, nil
	}
	c.mu.Unlock()

	ct, err := c.sniffer.Classify(data)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = ct
	c.mu.Unlock()

	return ct, nil
}
