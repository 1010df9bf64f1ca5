package transfer_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/events"
	"github.com/eddostedson/eddo-budg/internal/repository"
	"github.com/eddostedson/eddo-budg/internal/service/transfer"
	"github.com/eddostedson/eddo-budg/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupTransferService(t *testing.T, db *sql.DB) *transfer.Service {
	t.Helper()
	return transfer.NewService(
		repository.NewTransfertRepository(db),
		repository.NewRecetteRepository(db),
		db,
		events.NopPublisher{},
	)
}

func TestTransfer_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	salaire := testutil.SeedRecette(t, db, user.ID, "Salaire", dec("500000.00"))
	epargne := testutil.SeedRecette(t, db, user.ID, "Epargne", dec("0.00"))

	tr, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      salaire.ID,
		RecetteDestinationID: epargne.ID,
		Montant:              dec("120000.00"),
		Description:          "epargne mensuelle",
		DateTransfert:        time.Now().UTC(),
	})

	require.NoError(t, err)
	assert.True(t, dec("120000.00").Equal(tr.Montant))
	assert.Equal(t, salaire.ID, tr.RecetteSourceID)
	assert.Equal(t, epargne.ID, tr.RecetteDestinationID)

	assert.True(t, dec("380000.00").Equal(testutil.GetSolde(t, db, salaire.ID)))
	assert.True(t, dec("120000.00").Equal(testutil.GetSolde(t, db, epargne.ID)))
}

// A transfert never changes the combined balance of the two recettes.
func TestTransfer_ConservesTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	a := testutil.SeedRecette(t, db, user.ID, "A", dec("75000.50"))
	b := testutil.SeedRecette(t, db, user.ID, "B", dec("24999.50"))

	_, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      a.ID,
		RecetteDestinationID: b.ID,
		Montant:              dec("33333.33"),
		DateTransfert:        time.Now().UTC(),
	})
	require.NoError(t, err)

	total := testutil.GetSolde(t, db, a.ID).Add(testutil.GetSolde(t, db, b.ID))
	assert.True(t, dec("100000.00").Equal(total))
}

// Transfers-in may push a recette's available balance above its original
// amount; only the spend-down side is bounded.
func TestTransfer_DestinationAboveOriginalAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	source := testutil.SeedRecette(t, db, user.ID, "Source", dec("50000.00"))
	dest := testutil.SeedRecette(t, db, user.ID, "Dest", dec("10000.00"))

	_, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      source.ID,
		RecetteDestinationID: dest.ID,
		Montant:              dec("40000.00"),
		DateTransfert:        time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.True(t, dec("50000.00").Equal(testutil.GetSolde(t, db, dest.ID)))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	source := testutil.SeedRecette(t, db, user.ID, "Source", dec("1000.00"))
	dest := testutil.SeedRecette(t, db, user.ID, "Dest", dec("0.00"))

	_, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      source.ID,
		RecetteDestinationID: dest.ID,
		Montant:              dec("1000.01"),
		DateTransfert:        time.Now().UTC(),
	})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, dec("1000.00").Equal(testutil.GetSolde(t, db, source.ID)))
	assert.True(t, dec("0.00").Equal(testutil.GetSolde(t, db, dest.ID)))
	assert.Equal(t, 0, testutil.CountTransferts(t, db, source.ID))
}

func TestTransfer_OtherUsersRecetteNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	intruder := testutil.SeedTestUser(t, db, "intruder@test.com", "Intruder")
	source := testutil.SeedRecette(t, db, owner.ID, "Source", dec("5000.00"))
	dest := testutil.SeedRecette(t, db, owner.ID, "Dest", dec("0.00"))

	_, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               intruder.ID,
		RecetteSourceID:      source.ID,
		RecetteDestinationID: dest.ID,
		Montant:              dec("1000.00"),
		DateTransfert:        time.Now().UTC(),
	})

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, dec("5000.00").Equal(testutil.GetSolde(t, db, source.ID)))
}

func TestReverse_RestoresBothBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	source := testutil.SeedRecette(t, db, user.ID, "Source", dec("500000.00"))
	dest := testutil.SeedRecette(t, db, user.ID, "Dest", dec("0.00"))

	tr, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      source.ID,
		RecetteDestinationID: dest.ID,
		Montant:              dec("120000.00"),
		DateTransfert:        time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reverse(ctx, tr.ID, user.ID))

	assert.True(t, dec("500000.00").Equal(testutil.GetSolde(t, db, source.ID)))
	assert.True(t, dec("0.00").Equal(testutil.GetSolde(t, db, dest.ID)))
	assert.Equal(t, 0, testutil.CountTransferts(t, db, source.ID))

	// Reversing the same transfert again must fail: the row is gone.
	require.ErrorIs(t, svc.Reverse(ctx, tr.ID, user.ID), domain.ErrNotFound)
}

// A reversal fails closed when the destination has already spent the funds;
// no partial mutation may survive.
func TestReverse_FailsWhenDestinationAlreadySpent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	source := testutil.SeedRecette(t, db, user.ID, "Source", dec("100000.00"))
	middle := testutil.SeedRecette(t, db, user.ID, "Middle", dec("0.00"))
	sink := testutil.SeedRecette(t, db, user.ID, "Sink", dec("0.00"))

	first, err := svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      source.ID,
		RecetteDestinationID: middle.ID,
		Montant:              dec("30000.00"),
		DateTransfert:        time.Now().UTC(),
	})
	require.NoError(t, err)

	// Spend most of the transferred funds downstream.
	_, err = svc.Transfer(ctx, transfer.TransferRequest{
		UserID:               user.ID,
		RecetteSourceID:      middle.ID,
		RecetteDestinationID: sink.ID,
		Montant:              dec("25000.00"),
		DateTransfert:        time.Now().UTC(),
	})
	require.NoError(t, err)

	err = svc.Reverse(ctx, first.ID, user.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, dec("70000.00").Equal(testutil.GetSolde(t, db, source.ID)))
	assert.True(t, dec("5000.00").Equal(testutil.GetSolde(t, db, middle.ID)))
	assert.True(t, dec("25000.00").Equal(testutil.GetSolde(t, db, sink.ID)))
}

func TestTransfer_ConcurrentOverdraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupTransferService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	source := testutil.SeedRecette(t, db, user.ID, "Source", dec("10000.00"))
	dest := testutil.SeedRecette(t, db, user.ID, "Dest", dec("0.00"))

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, transfer.TransferRequest{
				UserID:               user.ID,
				RecetteSourceID:      source.ID,
				RecetteDestinationID: dest.ID,
				Montant:              dec("7000.00"),
				DateTransfert:        time.Now().UTC(),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failed++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.True(t, dec("3000.00").Equal(testutil.GetSolde(t, db, source.ID)))
	assert.True(t, dec("7000.00").Equal(testutil.GetSolde(t, db, dest.ID)))
}
