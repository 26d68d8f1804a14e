package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNetTotal(t *testing.T) {
	prior := []decimal.Decimal{d("50"), d("30")}

	net := NetTotal(d("200"), prior, d("40"))
	assert.True(t, net.Equal(d("80")), "net = %s", net)

	// The math itself does not floor at zero; the caller rejects a
	// refund that would report a negative ledger.
	net = NetTotal(d("200"), prior, d("150"))
	assert.True(t, net.Equal(d("-30")), "net = %s", net)

	net = NetTotal(d("200"), nil, d("200"))
	assert.True(t, net.IsZero(), "net = %s", net)
}
