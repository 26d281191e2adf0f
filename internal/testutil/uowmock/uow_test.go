package uowmock

import (
	"context"
	"errors"
	"testing"

	"loanportal/internal/domain/uow"
	"loanportal/internal/testutil/applicationmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	apps := &applicationmock.Repo{}
	docs := &applicationmock.DocumentRepo{}
	repos := uow.Repos{Applications: apps, Documents: docs}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Applications != apps || r.Documents != docs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_WithinTx_Default_Unimplemented(t *testing.T) {
	m := &UoW{} // no funcs set
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_ForwardsBodyError(t *testing.T) {
	stop := errors.New("stop")
	m := Passthrough(uow.Repos{})
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return stop }); !errors.Is(err, stop) {
		t.Fatalf("Passthrough: want %v, got %v", stop, err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil })
	if m.WithinTxFn == nil {
		t.Fatalf("fluent setter didn't assign func")
	}
	m.Reset()
	if m.WithinTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
