package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountBalance(t *testing.T) {
	cases := []struct {
		name    string
		stored  string
		want    string
		wantErr bool
	}{
		{name: "empty is zero", stored: "", want: "0"},
		{name: "blank is zero", stored: "   ", want: "0"},
		{name: "padded", stored: " 1250.50 ", want: "1250.5"},
		{name: "plain", stored: "1000.00", want: "1000"},
		{name: "garbage", stored: "n/a", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Account{CurrentBalance: tc.stored}.Balance()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}
