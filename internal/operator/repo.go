package operator

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/retailkit/pos/internal/postgres"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Repo struct{ DB postgres.DB }

// Authenticate verifies the password against the stored bcrypt hash. An
// unknown username and a wrong password return the same error.
func (r *Repo) Authenticate(ctx context.Context, username, password string) (Operator, error) {
	var (
		op   Operator
		hash string
	)
	err := r.DB.QueryRow(ctx, `SELECT id, username, password, role FROM operators WHERE username=$1`, username).
		Scan(&op.ID, &op.Username, &hash, &op.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return Operator{}, ErrInvalidCredentials
	}
	if err != nil {
		return Operator{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Operator{}, ErrInvalidCredentials
	}
	return op, nil
}
