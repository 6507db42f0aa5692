package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/carbon-dashboard/internal/share"
)

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name   string
		shares share.SourceShares
		want   []string
	}{
		{
			name:   "balanced",
			shares: share.SourceShares{ElectricitySharePercent: 25, DieselSharePercent: 20, PetrolSharePercent: 15, GasSharePercent: 15, RefrigerantSharePercent: 10},
			want:   []string{BalancedAdvice},
		},
		{
			name:   "electricity only",
			shares: share.SourceShares{ElectricitySharePercent: 25.1, DieselSharePercent: 20, PetrolSharePercent: 15, GasSharePercent: 15, RefrigerantSharePercent: 9.9},
			want:   []string{ElectricityAdvice},
		},
		{
			name:   "fixed order",
			shares: share.SourceShares{ElectricitySharePercent: 10, DieselSharePercent: 30, PetrolSharePercent: 5, GasSharePercent: 20, RefrigerantSharePercent: 35},
			want:   []string{DieselAdvice, GasAdvice, RefrigerantAdvice},
		},
		{
			name:   "single source",
			shares: share.SourceShares{PetrolSharePercent: 100},
			want:   []string{PetrolAdvice},
		},
		{
			name:   "no data",
			shares: share.SourceShares{},
			want:   []string{BalancedAdvice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggestions(tt.shares))
		})
	}
}
