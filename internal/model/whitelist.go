package model

import "time"

// WhitelistEntry is one configured domain whitelist source. Expiry is
// optional; a nil expiry means the entry never expires. An entry whose
// expiry has passed contributes nothing on the next reload.
type WhitelistEntry struct {
	SourceKey string
	Path      string
	Expiry    *time.Time
}

// Valid reports whether the entry should be included in a reload happening
// at the given instant. Expiry is exclusive: an entry expiring exactly now
// is already invalid.
func (e WhitelistEntry) Valid(now time.Time) bool {
	return e.Expiry == nil || e.Expiry.After(now)
}
