package pool

import (
	"errors"
	"fmt"
	"testing"
)

func TestPoolError_Error(t *testing.T) {
	err := &PoolError{Code: ErrCodeExhausted, Op: "acquire", Message: "test message"}
	expected := "acquire: test message (pool_exhausted)"
	if err.Error() != expected {
		t.Errorf("Expected %s, got %s", expected, err.Error())
	}

	err = &PoolError{Code: ErrCodeExhausted, Message: "test message"}
	if err.Error() != "test message (pool_exhausted)" {
		t.Errorf("Expected message with code but no op, got %s", err.Error())
	}
}

func TestPoolError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("inner error")
	err := WrapError(ErrCodeOpenFailed, "acquire", "could not open", cause)
	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to be reachable via errors.Is")
	}
}

func TestPoolError_IsMatchesByCode(t *testing.T) {
	err := NewPoolError(ErrCodeExhausted, "acquire", "could not get a good connection")
	if !errors.Is(err, ErrPoolExhausted) {
		t.Error("Expected exhaustion error to match ErrPoolExhausted")
	}
	if errors.Is(err, ErrInvalidatedUse) {
		t.Error("Expected exhaustion error not to match ErrInvalidatedUse")
	}
}
