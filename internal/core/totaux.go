// Package core computes the aggregate figures shown on dashboards. All
// functions are pure folds over a snapshot of rows; they hold no state and
// perform no I/O.
package core

import (
	"github.com/shopspring/decimal"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

// TotalDisponible sums the available balance across all given recettes.
func TotalDisponible(recettes []domain.Recette) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recettes {
		total = total.Add(r.SoldeDisponible)
	}
	return total
}

// TotalCertifie sums the available balance of bank-validated recettes only.
func TotalCertifie(recettes []domain.Recette) decimal.Decimal {
	total := decimal.Zero
	for _, r := range recettes {
		if r.ValidationBancaire {
			total = total.Add(r.SoldeDisponible)
		}
	}
	return total
}

// NetHorsExclusions is the aggregate bank balance net of accounts flagged
// exclude_from_total. It is computed as gross minus excluded, which must
// always equal the direct sum over non-excluded accounts; decimal arithmetic
// keeps the two formulations exactly equal.
func NetHorsExclusions(comptes []domain.CompteBancaire) decimal.Decimal {
	brut := decimal.Zero
	exclu := decimal.Zero
	for _, c := range comptes {
		brut = brut.Add(c.Solde)
		if c.ExcludeFromTotal {
			exclu = exclu.Add(c.Solde)
		}
	}
	return brut.Sub(exclu)
}
