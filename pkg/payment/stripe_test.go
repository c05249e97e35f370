package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinorUnitsTruncates(t *testing.T) {
	cases := map[float64]int64{
		50:    5000,
		19.99: 1998,
		0.015: 1,
		120.5: 12050,
		0:     0,
	}
	for price, want := range cases {
		assert.Equal(t, want, MinorUnits(price), "price %v", price)
	}
}

func TestNewStripeProcessorDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewStripeProcessor("", "usd"))

	p := NewStripeProcessor("sk_test_123", "")
	if assert.NotNil(t, p) {
		assert.Equal(t, "usd", p.currency)
	}
}
