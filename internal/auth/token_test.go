package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/retailkit/pos/internal/operator"
)

func TestIssueAndValidate(t *testing.T) {
	tokens := New("test-secret")
	op := operator.Operator{ID: 7, Username: "Cashier1", Role: operator.RoleCashier}

	signed, err := tokens.Issue(op, time.Now())
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.OperatorID)
	require.Equal(t, operator.RoleCashier, claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, err := New("secret-a").Issue(operator.Operator{ID: 1, Role: operator.RoleManager}, time.Now())
	require.NoError(t, err)

	_, err = New("secret-b").Validate(signed)
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tokens := New("test-secret")
	signed, err := tokens.Issue(operator.Operator{ID: 1, Role: operator.RoleManager}, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := New("test-secret").Validate("not.a.token")
	require.Error(t, err)
}
