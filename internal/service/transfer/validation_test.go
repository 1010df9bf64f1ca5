package transfer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

func TestValidateTransfer(t *testing.T) {
	source := uuid.New()
	destination := uuid.New()

	tests := []struct {
		name    string
		req     TransferRequest
		wantErr error
	}{
		{
			name: "valid request",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: destination,
				Montant:              decimal.RequireFromString("120000.00"),
			},
			wantErr: nil,
		},
		{
			name: "zero amount",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: destination,
				Montant:              decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: destination,
				Montant:              decimal.RequireFromString("-50.00"),
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "sub-cent amount",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: destination,
				Montant:              decimal.RequireFromString("10.005"),
			},
			wantErr: domain.ErrInvalidScale,
		},
		{
			name: "trailing zeros beyond two places are still cents",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: destination,
				Montant:              decimal.RequireFromString("10.500"),
			},
			wantErr: nil,
		},
		{
			name: "missing source",
			req: TransferRequest{
				RecetteDestinationID: destination,
				Montant:              decimal.RequireFromString("100.00"),
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "missing destination",
			req: TransferRequest{
				RecetteSourceID: source,
				Montant:         decimal.RequireFromString("100.00"),
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "same recette on both sides",
			req: TransferRequest{
				RecetteSourceID:      source,
				RecetteDestinationID: source,
				Montant:              decimal.RequireFromString("100.00"),
			},
			wantErr: domain.ErrSameRecette,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateTransfer(tc.req)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
