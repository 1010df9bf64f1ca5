package fund_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddostedson/eddo-budg/internal/domain"
	"github.com/eddostedson/eddo-budg/internal/repository"
	"github.com/eddostedson/eddo-budg/internal/service/fund"
	"github.com/eddostedson/eddo-budg/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupFundService(t *testing.T, db *sql.DB) *fund.Service {
	t.Helper()
	return fund.NewService(
		repository.NewFondRepository(db),
		repository.NewCompteRepository(db),
		db,
	)
}

func TestAllocate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)

	f, err := svc.Allocate(ctx, fund.AllocateRequest{
		UserID:              user.ID,
		TransactionSourceID: uuid.New(),
		SourceCompteID:      compte.ID,
		Montant:             dec("100000.00"),
		Libelle:             "Fonds famille",
	})

	require.NoError(t, err)
	assert.True(t, f.MontantInitial.Equal(f.MontantRestant))
	assert.True(t, dec("100000.00").Equal(testutil.GetFondRestant(t, db, f.ID)))
}

func TestAllocate_CompteOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	owner := testutil.SeedTestUser(t, db, "owner@test.com", "Owner")
	intruder := testutil.SeedTestUser(t, db, "intruder@test.com", "Intruder")
	compte := testutil.SeedCompte(t, db, owner.ID, "Courant", dec("300000.00"), false)

	_, err := svc.Allocate(ctx, fund.AllocateRequest{
		UserID:              intruder.ID,
		TransactionSourceID: uuid.New(),
		SourceCompteID:      compte.ID,
		Montant:             dec("100000.00"),
		Libelle:             "Fonds famille",
	})

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_DebitThenRejectOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	fond := testutil.SeedFond(t, db, user.ID, compte.ID, "Fonds famille", dec("100000.00"))

	_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementDebit,
		Montant:  dec("30000.00"),
	})
	require.NoError(t, err)
	assert.True(t, dec("70000.00").Equal(testutil.GetFondRestant(t, db, fond.ID)))

	// 80000 exceeds what is left; the total must not move.
	_, err = svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementDebit,
		Montant:  dec("80000.00"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, dec("70000.00").Equal(testutil.GetFondRestant(t, db, fond.ID)))

	mouvements, err := svc.Movements(ctx, fond.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, mouvements, 1)
}

func TestApplyMovement_CreditCappedAtInitial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	fond := testutil.SeedFond(t, db, user.ID, compte.ID, "Fonds famille", dec("100000.00"))

	_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementDebit,
		Montant:  dec("40000.00"),
	})
	require.NoError(t, err)

	// Refund part of the debit.
	_, err = svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementCredit,
		Montant:  dec("15000.00"),
	})
	require.NoError(t, err)
	assert.True(t, dec("75000.00").Equal(testutil.GetFondRestant(t, db, fond.ID)))

	// Crediting past the initial amount is rejected.
	_, err = svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementCredit,
		Montant:  dec("25000.01"),
	})
	require.ErrorIs(t, err, domain.ErrExceedsInitial)
	assert.True(t, dec("75000.00").Equal(testutil.GetFondRestant(t, db, fond.ID)))
}

func TestApplyMovement_InvalidType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	fond := testutil.SeedFond(t, db, user.ID, compte.ID, "Fonds famille", dec("100000.00"))

	_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   fond.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementType("virement"),
		Montant:  dec("10.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidMovement)
}

// Replaying the movement log must land exactly on the materialized total.
func TestMovementLog_ReplayMatchesMaterializedTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	fond := testutil.SeedFond(t, db, user.ID, compte.ID, "Fonds famille", dec("100000.00"))

	steps := []struct {
		typ     domain.MouvementType
		montant string
	}{
		{domain.MouvementDebit, "12345.67"},
		{domain.MouvementDebit, "0.01"},
		{domain.MouvementCredit, "2345.67"},
		{domain.MouvementDebit, "50000.00"},
		{domain.MouvementCredit, "0.01"},
	}
	for _, s := range steps {
		_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
			UserID:   user.ID,
			FondID:   fond.ID,
			CompteID: compte.ID,
			Type:     s.typ,
			Montant:  dec(s.montant),
		})
		require.NoError(t, err)
	}

	mouvements, err := svc.Movements(ctx, fond.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, mouvements, len(steps))

	replayed := fond.MontantInitial
	for _, m := range mouvements {
		if m.Type == domain.MouvementDebit {
			replayed = replayed.Sub(m.Montant)
		} else {
			replayed = replayed.Add(m.Montant)
		}
	}

	assert.True(t, replayed.Equal(testutil.GetFondRestant(t, db, fond.ID)))
}

func TestListAvailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	other := testutil.SeedCompte(t, db, user.ID, "Autre", dec("0.00"), false)

	live := testutil.SeedFond(t, db, user.ID, compte.ID, "Live", dec("50000.00"))
	exhausted := testutil.SeedFond(t, db, user.ID, compte.ID, "Exhausted", dec("20000.00"))
	testutil.SeedFond(t, db, user.ID, other.ID, "Elsewhere", dec("10000.00"))

	_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
		UserID:   user.ID,
		FondID:   exhausted.ID,
		CompteID: compte.ID,
		Type:     domain.MouvementDebit,
		Montant:  dec("20000.00"),
	})
	require.NoError(t, err)

	fonds, err := svc.ListAvailable(ctx, user.ID, compte.ID)
	require.NoError(t, err)
	require.Len(t, fonds, 1)
	assert.Equal(t, live.ID, fonds[0].ID)
}

func TestApplyMovement_ConcurrentDebits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupFundService(t, db)
	ctx := context.Background()

	user := testutil.SeedTestUser(t, db, "eddo@test.com", "Eddo")
	compte := testutil.SeedCompte(t, db, user.ID, "Courant", dec("300000.00"), false)
	fond := testutil.SeedFond(t, db, user.ID, compte.ID, "Fonds famille", dec("10000.00"))

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyMovement(ctx, fund.MovementRequest{
				UserID:   user.ID,
				FondID:   fond.ID,
				CompteID: compte.ID,
				Type:     domain.MouvementDebit,
				Montant:  dec("7000.00"),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.True(t, dec("3000.00").Equal(testutil.GetFondRestant(t, db, fond.ID)))

	mouvements, err := svc.Movements(ctx, fond.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, mouvements, 1)
}
