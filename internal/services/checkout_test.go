package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutURL(t *testing.T) {
	got, err := CheckoutURL("https://nexsupply.lemonsqueezy.com/checkout/buy/abc?embed=1", "buyer@example.com", "u-123")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/checkout/buy/abc", u.Path)
	q := u.Query()
	assert.Equal(t, "1", q.Get("embed"))
	assert.Equal(t, "buyer@example.com", q.Get("checkout[email]"))
	assert.Equal(t, "u-123", q.Get("checkout[custom][user_id]"))
}

func TestCheckoutURLErrors(t *testing.T) {
	_, err := CheckoutURL("", "a@b.c", "u")
	assert.ErrorIs(t, err, ErrCheckoutNotConfigured)

	_, err = CheckoutURL("not a url", "a@b.c", "u")
	assert.ErrorIs(t, err, ErrCheckoutNotConfigured)

	_, err = CheckoutURL("https://store.example", "a@b.c", "")
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = CheckoutURL("https://store.example", " ", "u")
	assert.ErrorIs(t, err, ErrEmailRequired)
}
