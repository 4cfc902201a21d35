// Package directory serves the configured operator accounts.
package directory

import (
	"context"
	"strings"

	domoperator "example.com/orderdesk/internal/domain/operator"
)

type Operators struct {
	byEmail map[string]domoperator.Operator
}

func NewOperators(ops ...domoperator.Operator) *Operators {
	d := &Operators{byEmail: make(map[string]domoperator.Operator, len(ops))}
	for _, op := range ops {
		if op.PasswordHash == "" {
			continue
		}
		op.Email = strings.ToLower(strings.TrimSpace(op.Email))
		d.byEmail[op.Email] = op
	}
	return d
}

func (d *Operators) GetByEmail(ctx context.Context, email string) (*domoperator.Operator, error) {
	op, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domoperator.ErrOperatorNotFound
	}
	return &op, nil
}

func (d *Operators) Len() int { return len(d.byEmail) }
