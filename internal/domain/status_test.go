package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		from, to Status
		retry    bool
		ok       bool
	}{
		{StatusIdle, StatusPending, false, true},
		{StatusPending, StatusSuccess, false, true},
		{StatusPending, StatusFailed, false, true},
		{StatusFailed, StatusPending, true, true},
		{StatusSuccess, StatusPending, true, true},
		{StatusFailed, StatusPending, false, false},
		{StatusSuccess, StatusFailed, false, false},
		{StatusSuccess, StatusIdle, true, false},
		{StatusPending, StatusIdle, false, false},
		{StatusIdle, StatusSuccess, false, false},
	}
	for _, tc := range tests {
		got, err := Advance(tc.from, tc.to, tc.retry)
		if tc.ok {
			if err != nil || got != tc.to {
				t.Fatalf("Advance(%s,%s,%t) = %s, %v; want %s", tc.from, tc.to, tc.retry, got, err, tc.to)
			}
			continue
		}
		if err == nil {
			t.Fatalf("Advance(%s,%s,%t) expected error", tc.from, tc.to, tc.retry)
		}
		if got != tc.from {
			t.Fatalf("rejected transition changed status to %s", got)
		}
	}
}

func TestKind(t *testing.T) {
	wrapped := fmt.Errorf("%w: brush path missing", ErrValidation)
	if got := Kind(wrapped); got != "validation_error" {
		t.Fatalf("Kind = %q", got)
	}
	if got := Kind(errors.New("boom")); got != "internal" {
		t.Fatalf("Kind = %q", got)
	}
	if got := Kind(nil); got != "" {
		t.Fatalf("Kind(nil) = %q", got)
	}
}
