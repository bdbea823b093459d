package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"with key", &Error{Op: OpHGetAll, Key: "storyline:story:1", Err: errors.New("i/o timeout")}, "HGETALL storyline:story:1: i/o timeout"},
		{"without key", &Error{Op: OpHMGet, Err: errors.New("at least one field is required")}, "HMGET: at least one field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Op: OpGet, Key: "k", Err: context.DeadlineExceeded})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause must be reachable through errors.Is")
	}
}
