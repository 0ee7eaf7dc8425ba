package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain integer", "1299", "1299", false},
		{"dollar with cents", "$999.00", "999", false},
		{"thousands comma", "$1,234.56", "1234.56", false},
		{"indian grouping", "₹1,23,456", "123456", false},
		{"european decimal comma", "1.299,00", "1299", false},
		{"lone decimal comma", "12,99", "12.99", false},
		{"european grouping only", "1.299.000", "1299000", false},
		{"yen grouping", "¥3,980", "3980", false},
		{"price range takes first", "US $49.99 to $59.99", "49.99", false},
		{"embedded in shipping text", "+$12.50 shipping", "12.5", false},
		{"trailing dot", "123.", "123", false},
		{"no number", "Contact seller", "", true},
		{"zero price", "$0.00", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
