package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mailtriage/internal/archive"
	"mailtriage/internal/model"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

type MockFingerprinter struct {
	mock.Mock
}

func (m *MockFingerprinter) Compute(data []byte) (model.Fingerprints, error) {
	args := m.Called(data)
	return args.Get(0).(model.Fingerprints), args.Error(1)
}

type MockExpander struct {
	mock.Mock
}

func (m *MockExpander) Expand(data []byte) (bool, []archive.Member, error) {
	args := m.Called(data)
	var members []archive.Member
	if v := args.Get(1); v != nil {
		members = v.([]archive.Member)
	}
	return args.Bool(0), members, args.Error(2)
}

type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Enrich(ctx context.Context, rec *model.SampleRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
