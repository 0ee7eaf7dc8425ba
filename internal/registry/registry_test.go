package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescout/backend/internal/domain"
)

func TestMarketplacesFor_SupportedCountries(t *testing.T) {
	r := New()

	for _, code := range r.Countries() {
		profiles, err := r.MarketplacesFor(code)
		require.NoError(t, err, "country %s", code)
		require.NotEmpty(t, profiles, "country %s", code)

		for _, mp := range profiles {
			assert.Equal(t, code, mp.Country)
			assert.NotEmpty(t, mp.Currency)
			assert.Contains(t, mp.SearchURL, "%s")
		}
	}
}

func TestMarketplacesFor_UnsupportedCountry(t *testing.T) {
	r := New()

	for _, code := range []string{"XX", "ZZ", "", "USA"} {
		_, err := r.MarketplacesFor(code)
		assert.ErrorIs(t, err, domain.ErrUnsupportedCountry, "country %q", code)
	}
}

func TestMarketplacesFor_CaseInsensitive(t *testing.T) {
	r := New()

	upper, err := r.MarketplacesFor("US")
	require.NoError(t, err)

	lower, err := r.MarketplacesFor("us")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
}

func TestMarketplacesFor_StableOrder(t *testing.T) {
	r := New()

	first, err := r.MarketplacesFor("US")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.MarketplacesFor("US")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// US declaration order from the marketplace table
	ids := make([]string, 0, len(first))
	for _, mp := range first {
		ids = append(ids, mp.ID)
	}
	assert.Equal(t, []string{"ebay", "walmart", "amazon", "target"}, ids)
}

func TestValidate(t *testing.T) {
	r := New()

	err := r.Validate(func(string) bool { return true })
	assert.NoError(t, err)

	err = r.Validate(func(id string) bool { return id != "flipkart" })
	assert.ErrorIs(t, err, domain.ErrUnknownParserProfile)
}

func TestSupports(t *testing.T) {
	r := New()

	assert.True(t, r.Supports("IN"))
	assert.True(t, r.Supports("in"))
	assert.False(t, r.Supports("XX"))
}
