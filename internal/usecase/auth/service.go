package auth

import (
	"context"
	"strings"

	domoperator "example.com/orderdesk/internal/domain/operator"
)

type PasswordComparer interface {
	Compare(hash string, password string) error
}

type Claims struct {
	OperatorID string
	Role       domoperator.Role
	Email      string
	Name       string
}

type TokenService interface {
	GenerateToken(op *domoperator.Operator) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	operators domoperator.Repository
	checker   PasswordComparer
	tokens    TokenService
}

func NewService(
	operators domoperator.Repository,
	checker PasswordComparer,
	tokens TokenService,
) *Service {
	return &Service{
		operators: operators,
		checker:   checker,
		tokens:    tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token    string
	Operator *domoperator.Operator
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return nil, domoperator.ErrInvalidCredential
	}

	op, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		return nil, domoperator.ErrUnauthorized
	}

	if err := s.checker.Compare(op.PasswordHash, in.Password); err != nil {
		return nil, domoperator.ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(op)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		Operator: op,
	}, nil
}
