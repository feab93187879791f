package dns

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
)

type nopStore struct{}

func (nopStore) Connect(context.Context) (Session, error) { return nil, nil }

func TestNewStore_Unknown(t *testing.T) {
	_, err := NewStore("no-such-store", logr.Discard(), nil)
	if err == nil {
		t.Fatal("expected error for unknown store, got nil")
	}
}

func TestRegisterAndNewStore(t *testing.T) {
	Register("test-store", func(log logr.Logger, settings map[string]string) (Store, error) {
		return nopStore{}, nil
	})

	s, err := NewStore("test-store", logr.Discard(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected store, got nil")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("dup-store", func(logr.Logger, map[string]string) (Store, error) { return nopStore{}, nil })
	Register("dup-store", func(logr.Logger, map[string]string) (Store, error) { return nopStore{}, nil })
}
