package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFiveStar(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "ten scale midpoint", in: 8, want: 4.0},
		{name: "five scale passes through", in: 3, want: 3.0},
		{name: "max ten scale", in: 10, want: 5.0},
		{name: "boundary five stays", in: 5, want: 5.0},
		{name: "odd ten scale rounds to one decimal", in: 7, want: 3.5},
		{name: "zero", in: 0, want: 0},
		{name: "negative clamps to zero", in: -2, want: 0},
		{name: "nan clamps to zero", in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToFiveStar(tt.in))
		})
	}
}

func TestToFiveStarRoundTripStable(t *testing.T) {
	// Converting an already-converted value must not halve it again.
	once := ToFiveStar(8)
	assert.Equal(t, once, ToFiveStar(once))
}
