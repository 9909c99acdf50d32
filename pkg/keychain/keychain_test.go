package keychain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/platewise/platewise/pkg/keychain"
	"github.com/platewise/platewise/pkg/payment"
)

func TestStoreRetrieveRoundTrip(t *testing.T) {
	keyring.MockInit()

	p, err := payment.New("4242424242424242", 3, 2030, "123", "94105")
	require.NoError(t, err)

	require.NoError(t, keychain.Store(p))

	exists, err := keychain.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	got, ok, err := keychain.Retrieve()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "4242424242424242", got.CardNumber.Reveal())
	assert.Equal(t, 3, got.ExpiryMonth)
	assert.Equal(t, 2030, got.ExpiryYear)
	assert.Equal(t, "123", got.CVV.Reveal())
	assert.Equal(t, "94105", got.BillingZIP)
}

func TestRetrieveWhenEmpty(t *testing.T) {
	keyring.MockInit()

	_, ok, err := keychain.Retrieve()
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := keychain.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDelete(t *testing.T) {
	keyring.MockInit()

	p, err := payment.New("378282246310005", 12, 2031, "1234", "90210")
	require.NoError(t, err)
	require.NoError(t, keychain.Store(p))

	require.NoError(t, keychain.Delete())

	_, ok, err := keychain.Retrieve()
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is not an error.
	require.NoError(t, keychain.Delete())
}

func TestRetrieveIncompleteSecrets(t *testing.T) {
	keyring.MockInit()

	// Only the card number present: treated as absent.
	require.NoError(t, keyring.Set(keychain.ServiceName, "card_number", "4242424242424242"))

	_, ok, err := keychain.Retrieve()
	require.NoError(t, err)
	assert.False(t, ok)
}
