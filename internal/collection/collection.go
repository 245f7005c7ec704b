// Package collection provides the ordered attachment container used by
// batch processing, together with its bulk filtering operations: removal by
// content type, removal by hash, and mark-filtered by hash set.
package collection

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"mailtriage/internal/codec"
	"mailtriage/internal/model"
)

var (
	// ErrContentTypeMissing indicates a filter ran before classification.
	// This is an ordering bug in the caller, never silently tolerated.
	ErrContentTypeMissing = errors.New("content type missing: classify records before filtering")
	// ErrHashLength indicates a hash string whose length maps to no known
	// algorithm.
	ErrHashLength = errors.New("unrecognized hash length")
)

// Fingerprinter computes the five digests of a payload.
type Fingerprinter interface {
	Compute(data []byte) (model.Fingerprints, error)
}

// Attachments is an ordered mutable set of sample records. Insertion order
// is significant: the text-concatenation helpers emit records in order.
// Attachments is built once per unit of work and is not safe for concurrent
// mutation.
type Attachments struct {
	records []*model.SampleRecord
}

// New returns a collection over the given records, preserving their order.
func New(records ...*model.SampleRecord) *Attachments {
	return &Attachments{records: records}
}

// WithFingerprints builds a collection from records that may still carry
// transfer-encoded payloads and no digests: each payload is decoded per its
// transfer encoding and all five fingerprints are filled in.
func WithFingerprints(fp Fingerprinter, records []*model.SampleRecord) (*Attachments, error) {
	for _, rec := range records {
		data, err := codec.Decode(rec.Payload, rec.TransferEncoding)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", rec.Filename, err)
		}
		rec.Payload = data
		rec.Size = len(data)
		if rec.Fingerprints, err = fp.Compute(data); err != nil {
			return nil, fmt.Errorf("attachment %q: %w", rec.Filename, err)
		}
	}
	return New(records...), nil
}

// Records exposes the underlying slice in insertion order.
func (a *Attachments) Records() []*model.SampleRecord { return a.records }

// Len reports the number of records currently held.
func (a *Attachments) Len() int { return len(a.records) }

// Append adds a record at the end of the collection.
func (a *Attachments) Append(rec *model.SampleRecord) {
	a.records = append(a.records, rec)
}

// RemoveAll empties the collection.
func (a *Attachments) RemoveAll() { a.records = nil }

// FilenamesText returns the newline-joined filenames of all records
// including nested members. Filenames that are not valid text are skipped
// rather than aborting the whole concatenation.
func (a *Attachments) FilenamesText() string {
	var b strings.Builder
	for _, rec := range a.records {
		appendLine(&b, rec.Filename)
		for _, m := range rec.Members {
			appendLine(&b, m.Filename)
		}
	}
	return strings.TrimSpace(b.String())
}

// PayloadsText returns the newline-joined textual payloads: the payload of
// every non-filtered, non-archive record, plus the member payloads of
// archive records. Binary (non-text) payloads are skipped per item.
func (a *Attachments) PayloadsText() string {
	var b strings.Builder
	for _, rec := range a.records {
		if rec.IsFiltered {
			continue
		}
		if !rec.IsArchive {
			appendLine(&b, string(rec.Payload))
			continue
		}
		for _, m := range rec.Members {
			appendLine(&b, string(m.Payload))
		}
	}
	return strings.TrimSpace(b.String())
}

// PopContentType removes every record whose content type equals the target
// (case-insensitive) and, within surviving archive records, removes matching
// nested members in place. Records already marked filtered are left alone.
func (a *Attachments) PopContentType(contentType string) error {
	target := strings.ToLower(contentType)

	kept := a.records[:0]
	for _, rec := range a.records {
		if rec.IsFiltered {
			kept = append(kept, rec)
			continue
		}
		if rec.ContentType == "" {
			return fmt.Errorf("%w (record %q)", ErrContentTypeMissing, rec.Filename)
		}
		if strings.ToLower(rec.ContentType) == target {
			continue
		}

		members := rec.Members[:0]
		for _, m := range rec.Members {
			if m.ContentType == "" {
				return fmt.Errorf("%w (member %q of %q)", ErrContentTypeMissing, m.Filename, rec.Filename)
			}
			if strings.ToLower(m.ContentType) != target {
				members = append(members, m)
			}
		}
		rec.Members = members
		kept = append(kept, rec)
	}
	a.records = kept
	return nil
}

// ApplyContentTypeFilters runs PopContentType for every configured content
// type in order.
func (a *Attachments) ApplyContentTypeFilters(contentTypes []string) error {
	for _, ct := range contentTypes {
		if err := a.PopContentType(ct); err != nil {
			return err
		}
	}
	return nil
}

// PopHash removes every record whose fingerprint equals hash. The algorithm
// is resolved from the hash length alone: 32→md5, 40→sha1, 64→sha256,
// 128→sha512. Any other length is an error, never silently ignored.
func (a *Attachments) PopHash(hash string) error {
	algo, ok := model.AlgorithmForLength(len(hash))
	if !ok {
		return fmt.Errorf("%w: %q", ErrHashLength, hash)
	}

	kept := a.records[:0]
	for _, rec := range a.records {
		if rec.ByAlgorithm(algo) != hash {
			kept = append(kept, rec)
		}
	}
	a.records = kept
	return nil
}

// Filter marks every record whose digest under hashType appears in
// checkList as filtered, dropping its payload; every other record is
// explicitly reset to unfiltered. It returns the set of all digests seen,
// matched or not, for caller bookkeeping.
func (a *Attachments) Filter(checkList map[string]struct{}, hashType string) (map[string]struct{}, error) {
	if _, ok := model.AlgorithmForLength(digestLength(hashType)); !ok {
		return nil, fmt.Errorf("unknown hash type %q", hashType)
	}

	seen := make(map[string]struct{}, len(a.records))
	for _, rec := range a.records {
		digest := rec.ByAlgorithm(hashType)
		if digest == "" {
			return nil, fmt.Errorf("record %q has no %s fingerprint", rec.Filename, hashType)
		}
		seen[digest] = struct{}{}

		if _, match := checkList[digest]; match {
			rec.MarkFiltered()
		} else {
			rec.IsFiltered = false
		}
	}
	return seen, nil
}

// digestLength maps an algorithm name back to its hex digest length so
// Filter can validate hashType through the same fixed table as PopHash.
func digestLength(algo string) int {
	switch algo {
	case "md5":
		return 32
	case "sha1":
		return 40
	case "sha256":
		return 64
	case "sha512":
		return 128
	}
	return 0
}

func appendLine(b *strings.Builder, s string) {
	if s == "" || !utf8.ValidString(s) {
		return
	}
	b.WriteString(s)
	b.WriteByte('\n')
}
