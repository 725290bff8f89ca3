package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoneyFormat(t *testing.T) {
	m := DefaultMoney()
	cases := map[float64]string{
		0:           "Rs.0.00",
		7.5:         "Rs.7.50",
		999.995:     "Rs.1,000.00",
		90000:       "Rs.90,000.00",
		1234567.891: "Rs.1,234,567.89",
		-1234.5:     "Rs.-1,234.50",
		-0.001:      "Rs.0.00",
	}
	for in, want := range cases {
		require.Equal(t, want, m.Format(in), "format %v", in)
	}
}

func TestAmountWithoutDecimals(t *testing.T) {
	require.Equal(t, "1,235", Amount(1234.5, 0))
	require.Equal(t, "100", Amount(99.5, 0))
	require.Equal(t, "1,000,000", Amount(1e6, -1))
}

func TestMoneyIsASCII(t *testing.T) {
	out := Money{Prefix: "USD ", Decimals: 2}.Format(2500)
	require.Equal(t, "USD 2,500.00", out)
	for _, r := range out {
		require.Less(t, r, rune(128))
	}
}

func TestPercent(t *testing.T) {
	require.Equal(t, "12.50%", Percent(12.5, 2))
	require.Equal(t, "4.0%", Percent(3.96, 1))
}
