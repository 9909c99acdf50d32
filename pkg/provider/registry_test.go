package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/provider"
)

type stubProvider struct {
	code string
}

func (s *stubProvider) StateCode() string  { return s.code }
func (s *stubProvider) StateName() string  { return "Stub" }
func (s *stubProvider) Selectors() map[string]string {
	return map[string]string{}
}
func (s *stubProvider) GetRegistrationStatus(context.Context, string, string) (*dmv.RegistrationStatus, error) {
	return nil, nil
}
func (s *stubProvider) ValidateEligibility(context.Context, string, string) (*dmv.EligibilityResult, error) {
	return nil, nil
}
func (s *stubProvider) GetFeeBreakdown(context.Context) (*dmv.FeeBreakdown, error) {
	return nil, nil
}
func (s *stubProvider) SubmitRenewal(context.Context, *config.UserConfiguration) (*dmv.RenewalResult, error) {
	return nil, nil
}

func stubFactory(code string) provider.Factory {
	return func(provider.Deps) provider.Provider {
		return &stubProvider{code: code}
	}
}

func TestRegisterAndNew(t *testing.T) {
	provider.Register("zz", stubFactory("ZZ"))

	p, err := provider.New("ZZ", provider.Deps{})
	require.NoError(t, err)
	assert.Equal(t, "ZZ", p.StateCode())

	// Lookup is case-insensitive.
	p, err = provider.New("zz", provider.Deps{})
	require.NoError(t, err)
	assert.Equal(t, "ZZ", p.StateCode())
}

func TestNewUnknownState(t *testing.T) {
	_, err := provider.New("XX", provider.Deps{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "XX")
}

func TestListSorted(t *testing.T) {
	provider.Register("ym", stubFactory("YM"))
	provider.Register("ya", stubFactory("YA"))

	codes := provider.List()
	var prev string
	for _, c := range codes {
		assert.Greater(t, c, prev, "codes not sorted")
		prev = c
	}
	assert.Contains(t, codes, "YA")
	assert.Contains(t, codes, "YM")
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	provider.Register("yd", stubFactory("YD"))
	assert.Panics(t, func() {
		provider.Register("YD", stubFactory("YD"))
	})
}
