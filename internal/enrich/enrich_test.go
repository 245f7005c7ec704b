package enrich

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/config"
	"mailtriage/internal/enrich/mocks"
	"mailtriage/internal/model"
)

func TestEnrichDocumentExtraction(t *testing.T) {
	ctx := context.Background()
	tikaOut := json.RawMessage(`[{"X-TIKA:content":"extracted text"}]`)

	tests := []struct {
		name       string
		cfg        config.EnrichConfig
		rec        *model.SampleRecord
		setupMocks func(ex *mocks.MockDocumentExtractor)
		wantDoc    json.RawMessage
		wantErr    bool
	}{
		{
			name: "allow-listed content type is extracted",
			cfg: config.EnrichConfig{
				TikaEnabled:      true,
				TikaContentTypes: []string{"application/pdf"},
			},
			rec: &model.SampleRecord{ContentType: "application/pdf", Payload: []byte("%PDF")},
			setupMocks: func(ex *mocks.MockDocumentExtractor) {
				ex.On("Extract", ctx, []byte("%PDF")).Return(tikaOut, nil)
			},
			wantDoc: tikaOut,
		},
		{
			name: "content type outside allow-list is skipped",
			cfg: config.EnrichConfig{
				TikaEnabled:      true,
				TikaContentTypes: []string{"application/pdf"},
			},
			rec:        &model.SampleRecord{ContentType: "image/png", Payload: []byte("png")},
			setupMocks: func(ex *mocks.MockDocumentExtractor) {},
		},
		{
			name:       "disabled extraction is skipped",
			cfg:        config.EnrichConfig{TikaContentTypes: []string{"application/pdf"}},
			rec:        &model.SampleRecord{ContentType: "application/pdf", Payload: []byte("%PDF")},
			setupMocks: func(ex *mocks.MockDocumentExtractor) {},
		},
		{
			name: "extractor error propagates",
			cfg: config.EnrichConfig{
				TikaEnabled:      true,
				TikaContentTypes: []string{"application/pdf"},
			},
			rec: &model.SampleRecord{ContentType: "application/pdf", Payload: []byte("%PDF")},
			setupMocks: func(ex *mocks.MockDocumentExtractor) {
				ex.On("Extract", ctx, []byte("%PDF")).Return(nil, assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := new(mocks.MockDocumentExtractor)
			tt.setupMocks(ex)

			c := NewCoordinator(ex, nil, tt.cfg)
			err := c.Enrich(ctx, tt.rec)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				if tt.wantDoc != nil {
					require.NotNil(t, tt.rec.Enrichment)
					assert.Equal(t, tt.wantDoc, tt.rec.Enrichment.DocumentExtraction)
				} else {
					assert.Nil(t, tt.rec.Enrichment)
				}
			}
			ex.AssertExpectations(t)
		})
	}
}

func TestEnrichReputation(t *testing.T) {
	ctx := context.Background()
	report := json.RawMessage(`{"positives":12}`)

	t.Run("root and members are looked up", func(t *testing.T) {
		rec := &model.SampleRecord{
			Fingerprints: model.Fingerprints{SHA1: "rootsha"},
			IsArchive:    true,
			Members: []*model.SampleRecord{
				{Fingerprints: model.Fingerprints{SHA1: "membersha"}},
			},
		}

		rep := new(mocks.MockReputationClient)
		rep.On("Lookup", mock.Anything, "rootsha").Return(report, nil)
		rep.On("Lookup", mock.Anything, "membersha").Return(nil, nil)

		c := NewCoordinator(nil, rep, config.EnrichConfig{ReputationEnabled: true})
		require.NoError(t, c.Enrich(ctx, rec))

		require.NotNil(t, rec.Enrichment)
		assert.Equal(t, report, rec.Enrichment.Reputation)
		// Empty lookup result attaches nothing to the member.
		assert.Nil(t, rec.Members[0].Enrichment)
		rep.AssertExpectations(t)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		rep := new(mocks.MockReputationClient)
		rep.On("Lookup", mock.Anything, "x").Return(nil, ErrMissingCredential)

		c := NewCoordinator(nil, rep, config.EnrichConfig{ReputationEnabled: true})
		err := c.Enrich(ctx, &model.SampleRecord{Fingerprints: model.Fingerprints{SHA1: "x"}})

		assert.ErrorIs(t, err, ErrMissingCredential)
	})
}

func TestVirusTotalClientRequiresAPIKey(t *testing.T) {
	v := NewVirusTotalClient("https://example.invalid", "")

	// The credential check happens before any network call, so an
	// unreachable endpoint never matters here.
	_, err := v.Lookup(context.Background(), "da39a3ee5e6b4b0d3255bfef95601890afd80709")

	assert.ErrorIs(t, err, ErrMissingCredential)
}
