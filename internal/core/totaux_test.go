package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eddostedson/eddo-budg/internal/core"
	"github.com/eddostedson/eddo-budg/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalDisponible(t *testing.T) {
	recettes := []domain.Recette{
		{SoldeDisponible: dec("380000.00")},
		{SoldeDisponible: dec("120000.00")},
		{SoldeDisponible: dec("0.00")},
	}

	assert.True(t, dec("500000.00").Equal(core.TotalDisponible(recettes)))
}

func TestTotalDisponible_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(core.TotalDisponible(nil)))
	assert.True(t, decimal.Zero.Equal(core.TotalCertifie(nil)))
	assert.True(t, decimal.Zero.Equal(core.NetHorsExclusions(nil)))
}

func TestTotalCertifie_OnlyValidatedRecettes(t *testing.T) {
	recettes := []domain.Recette{
		{SoldeDisponible: dec("380000.00"), ValidationBancaire: true},
		{SoldeDisponible: dec("120000.00"), ValidationBancaire: false},
		{SoldeDisponible: dec("55000.50"), ValidationBancaire: true},
	}

	assert.True(t, dec("435000.50").Equal(core.TotalCertifie(recettes)))
}

func TestNetHorsExclusions(t *testing.T) {
	comptes := []domain.CompteBancaire{
		{Solde: dec("250000.00")},
		{Solde: dec("80000.00"), ExcludeFromTotal: true},
		{Solde: dec("-1200.50")},
	}

	assert.True(t, dec("248799.50").Equal(core.NetHorsExclusions(comptes)))
}

// Gross minus excluded must equal the direct sum over included accounts,
// regardless of how the input is ordered or signed.
func TestNetHorsExclusions_MatchesDirectSum(t *testing.T) {
	comptes := []domain.CompteBancaire{
		{Solde: dec("0.01")},
		{Solde: dec("999999.99"), ExcludeFromTotal: true},
		{Solde: dec("-42.42")},
		{Solde: dec("1000.10"), ExcludeFromTotal: true},
		{Solde: dec("3.33")},
	}

	direct := decimal.Zero
	for _, c := range comptes {
		if !c.ExcludeFromTotal {
			direct = direct.Add(c.Solde)
		}
	}

	assert.True(t, direct.Equal(core.NetHorsExclusions(comptes)))
}

func TestNetHorsExclusions_AllExcluded(t *testing.T) {
	comptes := []domain.CompteBancaire{
		{Solde: dec("100.00"), ExcludeFromTotal: true},
		{Solde: dec("200.00"), ExcludeFromTotal: true},
	}

	assert.True(t, decimal.Zero.Equal(core.NetHorsExclusions(comptes)))
}
