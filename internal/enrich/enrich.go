// Package enrich conditionally attaches third-party analysis to sample
// records: document extraction gated by a content-type allow-list, and
// reputation lookups keyed by sha1.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mailtriage/internal/config"
	"mailtriage/internal/model"
)

// ErrMissingCredential indicates a reputation lookup was requested without a
// configured API key. It is raised before any network call.
var ErrMissingCredential = errors.New("reputation API key not configured")

// DocumentExtractor is the document-extraction collaborator contract.
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte) (json.RawMessage, error)
}

// ReputationClient is the reputation-lookup collaborator contract. A nil
// result with nil error means the service had nothing on file.
type ReputationClient interface {
	Lookup(ctx context.Context, sha1 string) (json.RawMessage, error)
}

// Coordinator applies the configured enrichment steps to a record.
type Coordinator struct {
	extractor  DocumentExtractor
	reputation ReputationClient
	cfg        config.EnrichConfig
}

// NewCoordinator constructs a Coordinator. Collaborators may be nil when the
// corresponding step is disabled in cfg.
func NewCoordinator(extractor DocumentExtractor, reputation ReputationClient, cfg config.EnrichConfig) *Coordinator {
	return &Coordinator{extractor: extractor, reputation: reputation, cfg: cfg}
}

// Enrich mutates rec in place. Document extraction runs on the root payload
// when its content type is allow-listed; reputation lookups run on the root
// and every archive member. The coordinator imposes no timeout of its own:
// callers cancel via ctx, and collaborator errors propagate unchanged.
func (c *Coordinator) Enrich(ctx context.Context, rec *model.SampleRecord) error {
	if c.cfg.TikaEnabled && containsFold(c.cfg.TikaContentTypes, rec.ContentType) {
		out, err := c.extractor.Extract(ctx, rec.Payload)
		if err != nil {
			return fmt.Errorf("document extraction: %w", err)
		}
		ensure(rec).DocumentExtraction = out
	}

	if c.cfg.ReputationEnabled {
		if err := c.lookup(ctx, rec); err != nil {
			return err
		}
		for _, m := range rec.Members {
			if err := c.lookup(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Coordinator) lookup(ctx context.Context, rec *model.SampleRecord) error {
	rep, err := c.reputation.Lookup(ctx, rec.SHA1)
	if err != nil {
		return fmt.Errorf("reputation lookup: %w", err)
	}
	if len(rep) > 0 {
		ensure(rec).Reputation = rep
	}
	return nil
}

func ensure(rec *model.SampleRecord) *model.Enrichment {
	if rec.Enrichment == nil {
		rec.Enrichment = &model.Enrichment{}
	}
	return rec.Enrichment
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
