package experiment

import (
	"errors"
	"testing"
	"time"
)

func windowedRegistration(t *testing.T, serviceType string, start, end time.Time) *Registration {
	t.Helper()
	reg, err := NewBuilder(serviceType).
		Trial("control", nil).
		Trial("next", nil).
		Default("control").
		Window(start, end).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

func TestDetectConflicts_InvalidFallbackKey(t *testing.T) {
	reg, err := NewBuilder("svc").
		Trial("a", nil).
		Default("a").
		OnError(RedirectSpecific("missing")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	conflicts := DetectConflicts([]*Registration{reg})
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	if conflicts[0].Kind != ConflictInvalidFallbackKey {
		t.Errorf("Kind = %v, want %v", conflicts[0].Kind, ConflictInvalidFallbackKey)
	}
}

func TestDetectConflicts_InvalidOrderedKeys(t *testing.T) {
	reg, err := NewBuilder("svc").
		Trial("a", nil).
		Trial("b", nil).
		Default("a").
		OnError(RedirectOrdered("b", "ghost", "phantom")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	conflicts := DetectConflicts([]*Registration{reg})
	if len(conflicts) != 2 {
		t.Fatalf("len(conflicts) = %d, want 2 (one per unknown key)", len(conflicts))
	}
	for _, c := range conflicts {
		if c.Kind != ConflictInvalidFallbackKey {
			t.Errorf("Kind = %v, want %v", c.Kind, ConflictInvalidFallbackKey)
		}
	}
}

func TestDetectConflicts_DuplicateUnbounded(t *testing.T) {
	a := windowedRegistration(t, "svc", time.Time{}, time.Time{})
	b := windowedRegistration(t, "svc", time.Time{}, time.Time{})

	conflicts := DetectConflicts([]*Registration{a, b})
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	if conflicts[0].Kind != ConflictDuplicateServiceRegistration {
		t.Errorf("Kind = %v, want %v", conflicts[0].Kind, ConflictDuplicateServiceRegistration)
	}
}

func TestDetectConflicts_OverlappingWindows(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := windowedRegistration(t, "svc", base, base.Add(48*time.Hour))
	b := windowedRegistration(t, "svc", base.Add(24*time.Hour), base.Add(72*time.Hour))

	conflicts := DetectConflicts([]*Registration{a, b})
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want exactly 1", len(conflicts))
	}
	if conflicts[0].Kind != ConflictOverlappingTimeWindows {
		t.Errorf("Kind = %v, want %v", conflicts[0].Kind, ConflictOverlappingTimeWindows)
	}
}

func TestDetectConflicts_DisjointWindows(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := windowedRegistration(t, "svc", base, base.Add(24*time.Hour))
	b := windowedRegistration(t, "svc", base.Add(48*time.Hour), base.Add(72*time.Hour))

	if conflicts := DetectConflicts([]*Registration{a, b}); len(conflicts) != 0 {
		t.Errorf("len(conflicts) = %d, want 0 for disjoint windows", len(conflicts))
	}
}

func TestDetectConflicts_DifferentServiceTypes(t *testing.T) {
	a := windowedRegistration(t, "svc.A", time.Time{}, time.Time{})
	b := windowedRegistration(t, "svc.B", time.Time{}, time.Time{})

	if conflicts := DetectConflicts([]*Registration{a, b}); len(conflicts) != 0 {
		t.Errorf("len(conflicts) = %d, want 0 across service types", len(conflicts))
	}
}

func TestValidateRegistrations(t *testing.T) {
	ok := windowedRegistration(t, "svc", time.Time{}, time.Time{})
	if err := ValidateRegistrations([]*Registration{ok}); err != nil {
		t.Errorf("ValidateRegistrations() error = %v, want nil", err)
	}

	dup := windowedRegistration(t, "svc", time.Time{}, time.Time{})
	err := ValidateRegistrations([]*Registration{ok, dup})
	if !errors.Is(err, ErrConflicts) {
		t.Errorf("ValidateRegistrations() error = %v, want ErrConflicts", err)
	}
}
