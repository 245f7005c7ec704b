// Package urlfilter extracts URLs from attachment text and suppresses any
// whose domain is on a time-bounded whitelist. The whitelist is rebuilt
// wholesale on reload; readers always see either the fully old or fully new
// set.
package urlfilter

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"mvdan.cc/xurls/v2"

	"mailtriage/internal/model"
)

// ErrBadWhitelist indicates a domain file that does not parse as a flat list
// of domain strings.
var ErrBadWhitelist = errors.New("whitelist file is not a list of domains")

// Filter is a two-state (fresh/stale) URL whitelist filter. It goes stale
// after the reload interval elapses or on explicit invalidation, and
// reloads itself on the next use.
type Filter struct {
	entries  []model.WhitelistEntry
	interval time.Duration
	rx       *regexp.Regexp

	mu        sync.RWMutex
	whitelist map[string]struct{}
	loadedAt  time.Time
	stale     bool
}

// New returns a Filter over the given whitelist sources. The filter starts
// stale: the first use triggers a reload.
func New(entries []model.WhitelistEntry, interval time.Duration) *Filter {
	return &Filter{
		entries:  entries,
		interval: interval,
		rx:       xurls.Strict(),
		stale:    true,
	}
}

// Reload rebuilds the whitelist from the union of currently valid entries.
// An entry whose expiry has passed contributes nothing, even if it did
// before. The swap is atomic from a reader's perspective.
func (f *Filter) Reload(now time.Time) error {
	fresh := make(map[string]struct{})
	for _, entry := range f.entries {
		if !entry.Valid(now) {
			continue
		}
		domains, err := loadDomains(entry.Path)
		if err != nil {
			return fmt.Errorf("whitelist %q: %w", entry.SourceKey, err)
		}
		for _, d := range domains {
			fresh[strings.ToLower(d)] = struct{}{}
		}
	}

	f.mu.Lock()
	f.whitelist = fresh
	f.loadedAt = now
	f.stale = false
	f.mu.Unlock()
	return nil
}

// Invalidate forces the filter stale so the next use reloads.
func (f *Filter) Invalidate() {
	f.mu.Lock()
	f.stale = true
	f.mu.Unlock()
}

// DomainCount reports the size of the current whitelist.
func (f *Filter) DomainCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.whitelist)
}

// Result is the outcome of one extraction pass. WithURLs is true iff URLs
// survives non-empty; Dropped counts URLs suppressed by the whitelist.
type Result struct {
	WithURLs bool
	URLs     map[string][]string
	Dropped  int
}

// ExtractAndFilter runs URL extraction over text, grouping URLs by
// lower-cased domain, then removes every URL whose domain is present in the
// whitelist.
func (f *Filter) ExtractAndFilter(text string) (Result, error) {
	if err := f.ensureFresh(); err != nil {
		return Result{}, err
	}

	res := Result{URLs: make(map[string][]string)}
	if text != "" {
		f.mu.RLock()
		for _, raw := range f.rx.FindAllString(text, -1) {
			u, err := url.Parse(raw)
			if err != nil || u.Hostname() == "" {
				continue
			}
			domain := strings.ToLower(u.Hostname())
			if _, ok := f.whitelist[domain]; ok {
				res.Dropped++
				continue
			}
			res.URLs[domain] = append(res.URLs[domain], raw)
		}
		f.mu.RUnlock()
	}

	res.WithURLs = len(res.URLs) > 0
	return res, nil
}

func (f *Filter) ensureFresh() error {
	f.mu.RLock()
	fresh := !f.stale && time.Since(f.loadedAt) < f.interval
	f.mu.RUnlock()
	if fresh {
		return nil
	}
	return f.Reload(time.Now())
}

// loadDomains reads a YAML file holding a flat list of domain strings.
func loadDomains(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, ErrBadWhitelist
	}
	domains := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, ErrBadWhitelist
		}
		domains = append(domains, s)
	}
	return domains, nil
}
