package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWrap_TagsMarker(t *testing.T) {
	err := Wrap(ErrConfiguration, "scheduler", "run", "limit must be positive", nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "scheduler: run: limit must be positive") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrap_WrapsCause(t *testing.T) {
	cause := errors.New("encoder exploded")
	err := Wrap(ErrExternalTool, "pool", "encode", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestWrap_NilMarkerDefaultsToValidation(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation fallback, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %v", err)
	}
}

func TestIsConfiguration(t *testing.T) {
	if !IsConfiguration(Wrap(ErrConfiguration, "c", "o", "m", nil)) {
		t.Fatal("expected configuration classification")
	}
	if IsConfiguration(Wrap(ErrExternalTool, "c", "o", "m", nil)) {
		t.Fatal("unexpected configuration classification")
	}
}

func TestContextRoundTrips(t *testing.T) {
	ctx := WithBackend(WithItemID(context.Background(), "item-1"), "chain-minify")
	if id, ok := ItemIDFromContext(ctx); !ok || id != "item-1" {
		t.Fatalf("item id round trip failed: %q %v", id, ok)
	}
	if name, ok := BackendFromContext(ctx); !ok || name != "chain-minify" {
		t.Fatalf("backend round trip failed: %q %v", name, ok)
	}
	if _, ok := ItemIDFromContext(context.Background()); ok {
		t.Fatal("expected absent item id")
	}
}
