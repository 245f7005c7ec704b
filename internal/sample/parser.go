// Package sample builds fully classified, fingerprinted records from raw
// attachment payloads. The pipeline is decode → expand → classify →
// blacklist → fingerprint → enrich; a blacklisted root drops the whole
// sample before fingerprinting or enrichment run.
package sample

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mailtriage/internal/archive"
	"mailtriage/internal/codec"
	"mailtriage/internal/model"
)

// Classifier sniffs a content type from payload bytes.
type Classifier interface {
	Classify(data []byte) (string, error)
}

// Fingerprinter computes the five digests of a payload.
type Fingerprinter interface {
	Compute(data []byte) (model.Fingerprints, error)
}

// Expander detects archives and extracts one level of members.
type Expander interface {
	Expand(data []byte) (isArchive bool, members []archive.Member, err error)
}

// Enricher attaches optional third-party analysis to a record.
type Enricher interface {
	Enrich(ctx context.Context, rec *model.SampleRecord) error
}

// RawAttachment is one attachment as handed over by the mail-parsing layer.
// Payload may still carry its transfer encoding.
type RawAttachment struct {
	Filename         string
	Payload          []byte
	MailContentType  string
	TransferEncoding string
}

// Parser assembles sample records. Safe for concurrent use: all mutable
// state lives in the injected collaborators, which synchronize themselves.
type Parser struct {
	classifier   Classifier
	fingerprints Fingerprinter
	expander     Expander
	enricher     Enricher
	blacklist    map[string]struct{}
	tracer       trace.Tracer
}

// NewParser constructs a Parser. The blacklist is matched case-insensitively
// against sniffed content types. enricher may be nil when enrichment is
// disabled entirely.
func NewParser(classifier Classifier, fingerprints Fingerprinter, expander Expander, enricher Enricher, blacklist []string) *Parser {
	bl := make(map[string]struct{}, len(blacklist))
	for _, ct := range blacklist {
		bl[strings.ToLower(ct)] = struct{}{}
	}
	return &Parser{
		classifier:   classifier,
		fingerprints: fingerprints,
		expander:     expander,
		enricher:     enricher,
		blacklist:    bl,
		tracer:       otel.Tracer("mailtriage/sample"),
	}
}

// Parse analyzes one attachment. It returns (nil, nil) when the root content
// type is blacklisted: the sample is dropped entirely and neither
// fingerprinting nor enrichment run for it.
func (p *Parser) Parse(ctx context.Context, raw RawAttachment) (*model.SampleRecord, error) {
	ctx, span := p.tracer.Start(ctx, "sample.parse",
		trace.WithAttributes(attribute.String("sample.filename", raw.Filename)))
	defer span.End()

	data, err := codec.Decode(raw.Payload, raw.TransferEncoding)
	if err != nil {
		return nil, err
	}

	rec := &model.SampleRecord{
		Filename:         raw.Filename,
		Extension:        extensionOf(raw.Filename),
		Payload:          data,
		TransferEncoding: raw.TransferEncoding,
		MailContentType:  raw.MailContentType,
		Size:             len(data),
	}

	isArchive, members, err := p.expander.Expand(data)
	if err != nil {
		return nil, err
	}
	rec.IsArchive = isArchive
	span.SetAttributes(attribute.Bool("sample.is_archive", isArchive))

	if isArchive {
		rec.Members = make([]*model.SampleRecord, 0, len(members))
		for _, m := range members {
			member, err := p.buildMember(m)
			if err != nil {
				return nil, err
			}
			rec.Members = append(rec.Members, member)
		}
	}

	rec.ContentType, err = p.classifier.Classify(data)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	span.SetAttributes(attribute.String("sample.content_type", rec.ContentType))

	if p.blacklisted(rec.ContentType) {
		span.SetAttributes(attribute.Bool("sample.blacklisted", true))
		return nil, nil
	}
	if rec.IsArchive {
		rec.Members = p.pruneBlacklisted(rec.Members)
	}

	rec.Fingerprints, err = p.fingerprints.Compute(data)
	if err != nil {
		return nil, err
	}
	for _, m := range rec.Members {
		if m.Fingerprints, err = p.fingerprints.Compute(m.Payload); err != nil {
			return nil, err
		}
	}

	if p.enricher != nil {
		if err := p.enricher.Enrich(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// buildMember classifies one archive member. Members are never re-tested for
// nested archives; expansion is one level deep by design.
func (p *Parser) buildMember(m archive.Member) (*model.SampleRecord, error) {
	ct, err := p.classifier.Classify(m.Data)
	if err != nil {
		return nil, fmt.Errorf("classify member %q: %w", m.Filename, err)
	}
	return &model.SampleRecord{
		Filename:    m.Filename,
		Extension:   extensionOf(m.Filename),
		Payload:     m.Data,
		Size:        len(m.Data),
		ContentType: ct,
	}, nil
}

func (p *Parser) blacklisted(contentType string) bool {
	if len(p.blacklist) == 0 {
		return false
	}
	_, ok := p.blacklist[strings.ToLower(contentType)]
	return ok
}

func (p *Parser) pruneBlacklisted(members []*model.SampleRecord) []*model.SampleRecord {
	kept := members[:0]
	for _, m := range members {
		if !p.blacklisted(m.ContentType) {
			kept = append(kept, m)
		}
	}
	return kept
}

// extensionOf returns the lower-cased filename extension including the dot,
// or "" when the filename has no dot segment.
func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
