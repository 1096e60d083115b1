package experiment

import (
	"context"
	"errors"
	"testing"
	"time"
)

func activationRegistration(t *testing.T, configure func(*Builder)) *Registration {
	t.Helper()
	b := NewBuilder("billing.Invoicer").
		Trial("control", nil).
		Trial("next", nil).
		Default("control")
	configure(b)
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

func fixedEvaluator(now time.Time) *Evaluator {
	return &Evaluator{Now: func() time.Time { return now }}
}

func TestEvaluator_NoBounds(t *testing.T) {
	reg := activationRegistration(t, func(b *Builder) {})
	e := NewEvaluator()

	if !e.Active(context.Background(), reg) {
		t.Error("Active() = false, want true for unbounded registration")
	}
}

func TestEvaluator_Window(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"inside window", now.Add(-time.Hour), now.Add(time.Hour), true},
		{"before start", now.Add(time.Hour), now.Add(2 * time.Hour), false},
		{"after end", now.Add(-2 * time.Hour), now.Add(-time.Hour), false},
		{"at start", now, now.Add(time.Hour), true},
		{"at end", now.Add(-time.Hour), now, true},
		{"open start", time.Time{}, now.Add(time.Hour), true},
		{"open end", now.Add(-time.Hour), time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := activationRegistration(t, func(b *Builder) {
				b.Window(tt.start, tt.end)
			})
			e := fixedEvaluator(now)
			if got := e.Active(context.Background(), reg); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluator_PastEndNeverActive(t *testing.T) {
	// Even a true predicate cannot resurrect an expired experiment.
	reg := activationRegistration(t, func(b *Builder) {
		b.Window(time.Time{}, time.Now().Add(-time.Minute))
		b.When(func(ctx context.Context) (bool, error) { return true, nil })
	})
	e := NewEvaluator()

	if e.Active(context.Background(), reg) {
		t.Error("Active() = true, want false for expired window")
	}
}

func TestEvaluator_Predicate(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"true", func(ctx context.Context) (bool, error) { return true, nil }, true},
		{"false", func(ctx context.Context) (bool, error) { return false, nil }, false},
		{"error fails closed", func(ctx context.Context) (bool, error) {
			return true, errors.New("backend down")
		}, false},
		{"panic fails closed", func(ctx context.Context) (bool, error) {
			panic("boom")
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := activationRegistration(t, func(b *Builder) { b.When(tt.pred) })
			e := NewEvaluator()
			if got := e.Active(context.Background(), reg); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}
