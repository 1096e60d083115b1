package route

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/trialops/experiment"
)

func TestMapResolver_Resolve(t *testing.T) {
	impl := ImplementationFunc(func(ctx context.Context, method string, args []any) (any, error) {
		return "ok", nil
	})
	reg := experiment.NewBuilder("svc.Thing").
		Trial("a", impl).
		Default("a").
		MustBuild()

	resolver, err := NewMapResolver(reg)
	if err != nil {
		t.Fatalf("NewMapResolver() error = %v", err)
	}

	got, err := resolver.Resolve(context.Background(), "svc.Thing", "a")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result, _ := got.Invoke(context.Background(), "Do", nil); result != "ok" {
		t.Errorf("Invoke() = %v, want ok", result)
	}
}

func TestMapResolver_UnknownPair(t *testing.T) {
	resolver, err := NewMapResolver()
	if err != nil {
		t.Fatalf("NewMapResolver() error = %v", err)
	}

	_, err = resolver.Resolve(context.Background(), "svc.Thing", "missing")
	if !errors.Is(err, ErrUnresolvable) {
		t.Errorf("Resolve() error = %v, want ErrUnresolvable", err)
	}
}

func TestMapResolver_NonImplementationRef(t *testing.T) {
	reg := experiment.NewBuilder("svc.Thing").
		Trial("a", "just a string").
		Default("a").
		MustBuild()

	_, err := NewMapResolver(reg)
	if err == nil {
		t.Fatal("NewMapResolver() error = nil, want descriptor type error")
	}
	if !strings.Contains(err.Error(), "svc.Thing/a") {
		t.Errorf("error %q does not name the offending trial", err)
	}
}
