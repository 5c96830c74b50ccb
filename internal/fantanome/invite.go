package fantanome

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// InviteAlphabet leaves out 0, O, 1 and I.
	InviteAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	InviteCodeLength  = 6
	MaxInviteAttempts = 12
)

// GenerateInviteCode returns a random candidate code. It does not check
// uniqueness.
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(InviteAlphabet)))
	b := make([]byte, InviteCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reading random: %w", err)
		}
		b[i] = InviteAlphabet[n.Int64()]
	}
	return string(b), nil
}

// UniqueInviteCode draws candidates until taken reports one as free, giving
// up with ErrInviteCodeExhausted after MaxInviteAttempts. The error is
// transient; callers may retry the whole operation.
func UniqueInviteCode(ctx context.Context, taken func(ctx context.Context, code string) (bool, error)) (string, error) {
	return uniqueInviteCode(ctx, GenerateInviteCode, taken)
}

func uniqueInviteCode(
	ctx context.Context,
	generate func() (string, error),
	taken func(ctx context.Context, code string) (bool, error),
) (string, error) {
	for range MaxInviteAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := generate()
		if err != nil {
			return "", err
		}
		used, err := taken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking invite code: %w", err)
		}
		if !used {
			return code, nil
		}
	}
	return "", ErrInviteCodeExhausted
}

// ValidInviteCode reports whether code has the shape of an invite code.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !inAlphabet(code[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	for i := 0; i < len(InviteAlphabet); i++ {
		if InviteAlphabet[i] == c {
			return true
		}
	}
	return false
}
