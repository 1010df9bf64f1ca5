package fund

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

// Input validation runs before any repository access, so a zero-value
// Service is enough here.

func TestApplyMovement_InputValidation(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	tests := []struct {
		name    string
		req     MovementRequest
		wantErr error
	}{
		{
			name: "unknown movement type",
			req: MovementRequest{
				Type:    domain.MouvementType("virement"),
				Montant: decimal.RequireFromString("10.00"),
			},
			wantErr: domain.ErrInvalidMovement,
		},
		{
			name: "zero amount",
			req: MovementRequest{
				Type:    domain.MouvementDebit,
				Montant: decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "sub-cent debit",
			req: MovementRequest{
				Type:    domain.MouvementDebit,
				Montant: decimal.RequireFromString("10.005"),
			},
			wantErr: domain.ErrInvalidScale,
		},
		{
			name: "sub-cent credit",
			req: MovementRequest{
				Type:    domain.MouvementCredit,
				Montant: decimal.RequireFromString("0.001"),
			},
			wantErr: domain.ErrInvalidScale,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ApplyMovement(ctx, tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAllocate_InputValidation(t *testing.T) {
	svc := &Service{}
	ctx := context.Background()

	_, err := svc.Allocate(ctx, AllocateRequest{
		TransactionSourceID: uuid.New(),
		Montant:             decimal.RequireFromString("100000.005"),
		Libelle:             "Fonds famille",
	})
	require.ErrorIs(t, err, domain.ErrInvalidScale)

	_, err = svc.Allocate(ctx, AllocateRequest{
		TransactionSourceID: uuid.New(),
		Montant:             decimal.RequireFromString("-1.00"),
		Libelle:             "Fonds famille",
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Allocate(ctx, AllocateRequest{
		TransactionSourceID: uuid.New(),
		Montant:             decimal.RequireFromString("100.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}
