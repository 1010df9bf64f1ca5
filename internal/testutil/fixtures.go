package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/eddostedson/eddo-budg/internal/domain"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedRecette(t *testing.T, db *sql.DB, userID uuid.UUID, libelle string, montant decimal.Decimal) *domain.Recette {
	t.Helper()

	now := time.Now().UTC()
	rec := &domain.Recette{
		ID:              uuid.New(),
		UserID:          userID,
		Libelle:         libelle,
		Montant:         montant,
		SoldeDisponible: montant,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := db.Exec(
		`INSERT INTO recettes (id, user_id, libelle, montant, solde_disponible, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.UserID, rec.Libelle, rec.Montant, rec.SoldeDisponible, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed recette %s: %v", libelle, err)
	}
	return rec
}

func SeedCompte(t *testing.T, db *sql.DB, userID uuid.UUID, nom string, solde decimal.Decimal, excluded bool) *domain.CompteBancaire {
	t.Helper()

	now := time.Now().UTC()
	c := &domain.CompteBancaire{
		ID:               uuid.New(),
		UserID:           userID,
		Nom:              nom,
		Solde:            solde,
		ExcludeFromTotal: excluded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := db.Exec(
		`INSERT INTO comptes_bancaires (id, user_id, nom, solde, exclude_from_total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.Nom, c.Solde, c.ExcludeFromTotal, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed compte %s: %v", nom, err)
	}
	return c
}

func SeedFond(t *testing.T, db *sql.DB, userID, compteID uuid.UUID, libelle string, montant decimal.Decimal) *domain.FondPartage {
	t.Helper()

	now := time.Now().UTC()
	f := &domain.FondPartage{
		ID:                  uuid.New(),
		UserID:              userID,
		SourceCompteID:      compteID,
		TransactionSourceID: uuid.New(),
		Libelle:             libelle,
		MontantInitial:      montant,
		MontantRestant:      montant,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	_, err := db.Exec(
		`INSERT INTO fonds_partages (
			id, user_id, source_compte_id, transaction_source_id, libelle,
			montant_initial, montant_restant, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.UserID, f.SourceCompteID, f.TransactionSourceID, f.Libelle,
		f.MontantInitial, f.MontantRestant, f.Version, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed fond %s: %v", libelle, err)
	}
	return f
}

func GetSolde(t *testing.T, db *sql.DB, recetteID uuid.UUID) decimal.Decimal {
	t.Helper()

	var solde decimal.Decimal
	err := db.QueryRow(`SELECT solde_disponible FROM recettes WHERE id = $1`, recetteID).Scan(&solde)
	if err != nil {
		t.Fatalf("get solde for recette %s: %v", recetteID, err)
	}
	return solde
}

func GetFondRestant(t *testing.T, db *sql.DB, fondID uuid.UUID) decimal.Decimal {
	t.Helper()

	var restant decimal.Decimal
	err := db.QueryRow(`SELECT montant_restant FROM fonds_partages WHERE id = $1`, fondID).Scan(&restant)
	if err != nil {
		t.Fatalf("get montant_restant for fond %s: %v", fondID, err)
	}
	return restant
}

func CountTransferts(t *testing.T, db *sql.DB, recetteID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transferts WHERE recette_source_id = $1 OR recette_destination_id = $1`,
		recetteID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transferts for recette %s: %v", recetteID, err)
	}
	return count
}
