package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStay(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: "5+", want: 5},
		{in: "120+", want: 120},
		{in: "120 +", want: 120},
		{in: " 42 ", want: 42},
		{in: "007", want: 7},
		{in: "1.5", want: 15},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "+", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanStay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanStay_Idempotent(t *testing.T) {
	for _, raw := range []string{"5+", "120 +", "0", "365", "99999999"} {
		first, err := CleanStay(raw)
		require.NoError(t, err)
		second, err := CleanStay(FormatStay(first))
		require.NoError(t, err)
		assert.Equal(t, first, second, raw)
	}
}

func TestFormatStay(t *testing.T) {
	assert.Equal(t, "5", FormatStay(5))
	assert.Equal(t, "120", FormatStay(120))
}
