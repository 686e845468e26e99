package services

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrCheckoutNotConfigured means LEMON_SQUEEZY_STORE_URL is empty.
	ErrCheckoutNotConfigured = errors.New("checkout store url not configured")
	// ErrLoginRequired means the checkout cannot be tied to a user.
	ErrLoginRequired = errors.New("sign in to subscribe")
	// ErrEmailRequired means the profile has no email to prefill.
	ErrEmailRequired = errors.New("profile has no email")
)

// Plan is one column of the pricing table.
type Plan struct {
	ID       string
	Name     string
	Price    string
	Features []string
}

// Plans lists the subscription tiers.
var Plans = []Plan{
	{ID: "free", Name: "Free", Price: "$0", Features: []string{"3 analyses per month", "Basic report", "Limited features"}},
	{ID: "pro", Name: "Pro", Price: "$49/month", Features: []string{"Unlimited analyses", "Detailed PDF report", "Priority support", "Advanced analysis features"}},
}

// CheckoutURL appends the customer's email and user id to the hosted store
// URL so the store can prefill the form and report the user back.
func CheckoutURL(storeURL, email, userID string) (string, error) {
	storeURL = strings.TrimSpace(storeURL)
	if storeURL == "" {
		return "", ErrCheckoutNotConfigured
	}
	if userID == "" {
		return "", ErrLoginRequired
	}
	if strings.TrimSpace(email) == "" {
		return "", ErrEmailRequired
	}

	u, err := url.Parse(storeURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrCheckoutNotConfigured
	}
	q := u.Query()
	q.Set("checkout[email]", strings.TrimSpace(email))
	q.Set("checkout[custom][user_id]", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
