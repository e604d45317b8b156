package profiles

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/menuforge/menuforge/internal/shared"
)

func TestMapUpsertErrorUniqueViolation(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"}

	err := mapUpsertError(raw, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
	assert.ErrorIs(t, err, shared.ErrProfileInit)
	assert.Contains(t, err.Error(), "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
}

func TestMapUpsertErrorPassesThroughOtherErrors(t *testing.T) {
	raw := errors.New("connection reset")

	err := mapUpsertError(raw, "any")
	assert.Equal(t, raw, err)
	assert.NotErrorIs(t, err, shared.ErrProfileInit)

	other := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(other), mapUpsertError(other, "any"))
}
