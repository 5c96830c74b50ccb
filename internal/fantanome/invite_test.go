package fantanome

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	for range 200 {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode: %v", err)
		}
		if !ValidInviteCode(code) {
			t.Fatalf("generated invalid code %q", code)
		}
		if strings.ContainsAny(code, "01IO") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
}

func TestValidInviteCode(t *testing.T) {
	tests := map[string]bool{
		"ABC234":  true,
		"abc234":  false,
		"ABC23":   false,
		"ABC2345": false,
		"ABC10O":  false,
		"":        false,
	}
	for code, want := range tests {
		if got := ValidInviteCode(code); got != want {
			t.Errorf("ValidInviteCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestUniqueInviteCodeRetries(t *testing.T) {
	calls := 0
	taken := func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls < 3, nil
	}

	code, err := UniqueInviteCode(context.Background(), taken)
	if err != nil {
		t.Fatalf("UniqueInviteCode: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !ValidInviteCode(code) {
		t.Errorf("invalid code %q", code)
	}
}

func TestUniqueInviteCodeExhausted(t *testing.T) {
	calls := 0
	taken := func(_ context.Context, _ string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := UniqueInviteCode(context.Background(), taken)
	if !errors.Is(err, ErrInviteCodeExhausted) {
		t.Fatalf("err = %v, want ErrInviteCodeExhausted", err)
	}
	if calls != MaxInviteAttempts {
		t.Errorf("calls = %d, want %d", calls, MaxInviteAttempts)
	}
}

func TestUniqueInviteCodeCheckError(t *testing.T) {
	boom := errors.New("db down")
	taken := func(_ context.Context, _ string) (bool, error) { return false, boom }

	_, err := UniqueInviteCode(context.Background(), taken)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestUniqueInviteCodeGeneratorError(t *testing.T) {
	boom := errors.New("no entropy")
	gen := func() (string, error) { return "", boom }
	taken := func(_ context.Context, _ string) (bool, error) { return false, nil }

	_, err := uniqueInviteCode(context.Background(), gen, taken)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestUniqueInviteCodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := UniqueInviteCode(ctx, func(context.Context, string) (bool, error) { return false, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
