package model

import "encoding/json"

// Fingerprints holds the five digests computed for every payload. The four
// cryptographic digests are hex-encoded; Fuzzy is a context-triggered
// piecewise hash used for near-duplicate detection.
type Fingerprints struct {
	MD5    string `json:"md5,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	SHA512 string `json:"sha512,omitempty"`
	Fuzzy  string `json:"fuzzy_hash,omitempty"`
}

// ByAlgorithm returns the digest for the given algorithm name, or "" for an
// unknown algorithm.
func (f Fingerprints) ByAlgorithm(algo string) string {
	switch algo {
	case "md5":
		return f.MD5
	case "sha1":
		return f.SHA1
	case "sha256":
		return f.SHA256
	case "sha512":
		return f.SHA512
	case "fuzzy_hash", "ssdeep":
		return f.Fuzzy
	}
	return ""
}

// AlgorithmForLength maps a hex digest length to its algorithm name.
// The mapping is fixed: 32→md5, 40→sha1, 64→sha256, 128→sha512.
func AlgorithmForLength(n int) (string, bool) {
	switch n {
	case 32:
		return "md5", true
	case 40:
		return "sha1", true
	case 64:
		return "sha256", true
	case 128:
		return "sha512", true
	}
	return "", false
}

// Enrichment carries optional third-party analysis output attached to a
// record. Both fields hold the collaborator's structured response verbatim.
type Enrichment struct {
	DocumentExtraction json.RawMessage `json:"document_extraction,omitempty"`
	Reputation         json.RawMessage `json:"reputation,omitempty"`
}

// SampleRecord is one attachment or one archive member. Payload always holds
// fully decoded bytes; transfer encoding exists only at serialization
// boundaries. Root-only fields (TransferEncoding, MailContentType) stay empty
// on archive members.
type SampleRecord struct {
	Filename         string `json:"filename"`
	Extension        string `json:"extension,omitempty"`
	Payload          []byte `json:"payload,omitempty"`
	TransferEncoding string `json:"transfer_encoding,omitempty"`
	MailContentType  string `json:"mail_content_type,omitempty"`
	Size             int    `json:"size"`
	ContentType      string `json:"content_type"`

	Fingerprints

	IsArchive  bool            `json:"is_archive"`
	Members    []*SampleRecord `json:"members,omitempty"`
	IsFiltered bool            `json:"is_filtered"`
	Enrichment *Enrichment     `json:"enrichment,omitempty"`
}

// MarkFiltered flags the record as filtered and drops its payload. Metadata
// and fingerprints are retained.
func (r *SampleRecord) MarkFiltered() {
	r.IsFiltered = true
	r.Payload = nil
}
