package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domoperator "example.com/orderdesk/internal/domain/operator"
)

type mockOperatorRepository struct {
	byEmail       map[string]*domoperator.Operator
	getByEmailErr error
	lookups       []string
}

func newMockOperatorRepository(ops ...*domoperator.Operator) *mockOperatorRepository {
	m := &mockOperatorRepository{byEmail: make(map[string]*domoperator.Operator)}
	for _, op := range ops {
		m.byEmail[op.Email] = op
	}
	return m
}

func (m *mockOperatorRepository) GetByEmail(ctx context.Context, email string) (*domoperator.Operator, error) {
	m.lookups = append(m.lookups, email)
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	if op, ok := m.byEmail[email]; ok {
		cloned := *op
		return &cloned, nil
	}
	return nil, domoperator.ErrOperatorNotFound
}

type mockPasswordComparer struct {
	compareErr error
}

func (m *mockPasswordComparer) Compare(hash string, password string) error {
	return m.compareErr
}

type mockTokenService struct {
	token       string
	generateErr error
}

func (m *mockTokenService) GenerateToken(op *domoperator.Operator) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if m.token != "" {
		return m.token, nil
	}
	return "mock-token-" + op.Email, nil
}

func (m *mockTokenService) ParseToken(token string) (*Claims, error) {
	return nil, errors.New("not implemented")
}

func admin() *domoperator.Operator {
	return &domoperator.Operator{
		ID:           "op-1",
		Name:         "Ops",
		Email:        "ops@example.com",
		Role:         domoperator.RoleAdmin,
		PasswordHash: "hash",
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockOperatorRepository(admin())
	svc := NewService(repo, &mockPasswordComparer{}, &mockTokenService{})

	res, err := svc.Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "secret"})

	require.NoError(t, err)
	require.Equal(t, "mock-token-ops@example.com", res.Token)
	require.Equal(t, "op-1", res.Operator.ID)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	repo := newMockOperatorRepository(admin())
	svc := NewService(repo, &mockPasswordComparer{}, &mockTokenService{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "  OPS@Example.com ", Password: "secret"})

	require.NoError(t, err)
	require.Equal(t, []string{"ops@example.com"}, repo.lookups)
}

func TestLogin_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		in   LoginInput
	}{
		{name: "empty email", in: LoginInput{Password: "secret"}},
		{name: "blank email", in: LoginInput{Email: "   ", Password: "secret"}},
		{name: "empty password", in: LoginInput{Email: "ops@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockOperatorRepository(admin())
			svc := NewService(repo, &mockPasswordComparer{}, &mockTokenService{})

			res, err := svc.Login(context.Background(), tt.in)

			require.ErrorIs(t, err, domoperator.ErrInvalidCredential)
			require.Nil(t, res)
			require.Empty(t, repo.lookups)
		})
	}
}

func TestLogin_UnknownOperator(t *testing.T) {
	svc := NewService(newMockOperatorRepository(), &mockPasswordComparer{}, &mockTokenService{})

	res, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "secret"})

	require.ErrorIs(t, err, domoperator.ErrUnauthorized)
	require.Nil(t, res)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockOperatorRepository(admin())
	svc := NewService(repo, &mockPasswordComparer{compareErr: errors.New("mismatch")}, &mockTokenService{})

	res, err := svc.Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "wrong"})

	require.ErrorIs(t, err, domoperator.ErrUnauthorized)
	require.Nil(t, res)
}

func TestLogin_TokenError(t *testing.T) {
	repo := newMockOperatorRepository(admin())
	svc := NewService(repo, &mockPasswordComparer{}, &mockTokenService{generateErr: errors.New("sign failed")})

	res, err := svc.Login(context.Background(), LoginInput{Email: "ops@example.com", Password: "secret"})

	require.EqualError(t, err, "sign failed")
	require.Nil(t, res)
}
