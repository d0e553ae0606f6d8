package fsm

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusInProgress) {
		t.Fatal("expected PENDING -> IN_PROGRESS to be allowed")
	}
	if !CanTransition(StatusPending, StatusCancelled) {
		t.Fatal("expected PENDING -> CANCELLED to be allowed")
	}
	if CanTransition(StatusPending, StatusDelivered) {
		t.Fatal("unexpected PENDING -> DELIVERED allowed")
	}
	if !CanTransition(StatusInProgress, StatusDisputed) {
		t.Fatal("expected IN_PROGRESS -> DISPUTED to be allowed")
	}
	if !CanTransition(StatusDelivered, StatusCompleted) {
		t.Fatal("expected DELIVERED -> COMPLETED to be allowed")
	}
	if CanTransition(StatusDelivered, StatusCancelled) {
		t.Fatal("unexpected DELIVERED -> CANCELLED allowed")
	}
	if !CanTransition(StatusDisputed, StatusCancelled) {
		t.Fatal("expected DISPUTED -> CANCELLED to be allowed")
	}
	if CanTransition("UNKNOWN", StatusPending) {
		t.Fatal("unexpected transition from unknown status")
	}
}

func TestTerminalStatusesRejectEverything(t *testing.T) {
	for _, from := range []string{StatusCompleted, StatusCancelled} {
		if !IsTerminal(from) {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range All() {
			if CanTransition(from, to) {
				t.Fatalf("terminal %s must reject %s", from, to)
			}
		}
	}
	if IsTerminal(StatusDelivered) {
		t.Fatal("DELIVERED is not terminal")
	}
}

func TestSameStatusIsNotATransition(t *testing.T) {
	for _, s := range All() {
		if CanTransition(s, s) {
			t.Fatalf("expected %s -> %s to be rejected", s, s)
		}
	}
}

func TestAllowedIsStable(t *testing.T) {
	got := Allowed(StatusInProgress)
	want := []string{StatusDelivered, StatusDisputed, StatusCancelled}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(Allowed(StatusCompleted)) != 0 {
		t.Fatal("expected no moves from COMPLETED")
	}
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusDelivered, int64(7), StatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := Apply(context.Background(), db, 7, StatusInProgress, StatusDelivered); err != nil {
		t.Fatalf("apply: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(StatusDelivered, int64(8), StatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := Apply(context.Background(), db, 8, StatusInProgress, StatusDelivered); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on lost race, got %v", err)
	}

	if err := Apply(context.Background(), db, 9, StatusCompleted, StatusDisputed); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
