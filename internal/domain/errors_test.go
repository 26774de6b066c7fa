package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "fakturoid.request",
		Kind: KindRemote,
		Path: "/user.json",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Kind != KindRemote {
		t.Fatalf("expected kind %s", KindRemote)
	}
	if !strings.Contains(err.Error(), "path=/user.json") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestIsKindForOpError(t *testing.T) {
	err := &OpError{
		Op:   "tomlconfig.load",
		Kind: KindInvalidConfig,
		Err:  ErrInvalidConfig,
	}

	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected IsKind to match op error")
	}
	if IsKind(err, KindNotFound) {
		t.Fatalf("expected IsKind to reject other kinds")
	}
	if IsKind(errors.New("plain"), KindInvalidConfig) {
		t.Fatalf("expected IsKind false for plain errors")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(ErrCancelled) {
		t.Fatalf("expected sentinel to be cancelled")
	}
	wrapped := &OpError{Op: "tui.select", Kind: KindCancelled}
	if !IsCancelled(wrapped) {
		t.Fatalf("expected cancelled kind to be cancelled")
	}
	if IsCancelled(ErrNotFound) {
		t.Fatalf("expected not found to not be cancelled")
	}
}

func TestNilOpErrorString(t *testing.T) {
	var e *OpError
	if e.Error() != "<nil>" {
		t.Fatalf("expected <nil>, got %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Fatalf("expected nil unwrap")
	}
}
