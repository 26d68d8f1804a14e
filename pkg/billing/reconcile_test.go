package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		total         string
		allocations   []Allocation
		wantBalanced  bool
		wantRemaining string
		wantErr       bool
	}{
		{
			name:  "split covers total with sub-cent slack",
			total: "100",
			allocations: []Allocation{
				{Method: "efectivo", Amount: d("60")},
				{Method: "tarjeta", Amount: d("40.005")},
			},
			wantBalanced:  true,
			wantRemaining: "-0.005",
		},
		{
			name:          "underfunded",
			total:         "100",
			allocations:   []Allocation{{Method: "efectivo", Amount: d("90")}},
			wantBalanced:  false,
			wantRemaining: "10",
		},
		{
			name:          "overfunded",
			total:         "100",
			allocations:   []Allocation{{Method: "transferencia", Amount: d("100.02")}},
			wantBalanced:  false,
			wantRemaining: "-0.02",
		},
		{
			name:          "exact single method",
			total:         "134.99",
			allocations:   SingleAllocation("efectivo", d("134.99")),
			wantBalanced:  true,
			wantRemaining: "0",
		},
		{
			name:        "empty allocation list",
			total:       "100",
			allocations: nil,
			wantErr:     true,
		},
		{
			name:        "zero amount",
			total:       "100",
			allocations: []Allocation{{Method: "efectivo", Amount: d("0")}},
			wantErr:     true,
		},
		{
			name:        "negative amount",
			total:       "100",
			allocations: []Allocation{{Method: "tarjeta", Amount: d("-5")}},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Reconcile(d(tt.total), tt.allocations)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalanced, result.Balanced, "remaining = %s", result.Remaining)
			assert.True(t, result.Remaining.Equal(d(tt.wantRemaining)),
				"remaining = %s, want %s", result.Remaining, tt.wantRemaining)
		})
	}
}
