package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestOperationError_Kinds(t *testing.T) {
	cause := fmt.Errorf("hset story:1: %w", ErrStoreUnavailable)
	err := NewOperationError("update story", "failed to update, please try later", cause)

	if !errors.Is(err, ErrOperationFailed) {
		t.Error("expected ErrOperationFailed")
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("expected cause kind to be preserved")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("unexpected ErrNotFound")
	}
}

func TestOperationError_NilCause(t *testing.T) {
	err := NewOperationError("create story", "failed to add", nil)
	if !errors.Is(err, ErrOperationFailed) {
		t.Error("expected ErrOperationFailed")
	}
	if err.Error() != "create story: failed to add" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"operation error message",
			NewOperationError("delete story", "failed to delete, please try later", errors.New("dial tcp: refused")),
			"failed to delete, please try later",
		},
		{"sentinel", fmt.Errorf("parse: %w", ErrInvalidIdentifier), "invalid identifier"},
		{"unknown", errors.New("boom: secret internals"), "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicMessage(tc.err); got != tc.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}
