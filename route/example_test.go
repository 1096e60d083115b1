package route_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/trialops/experiment"
	"github.com/jonwraymond/trialops/route"
	"github.com/jonwraymond/trialops/selection"
)

func ExampleRouter_Call() {
	control := route.ImplementationFunc(func(ctx context.Context, method string, args []any) (any, error) {
		return "ranked by heuristics", nil
	})
	ml := route.ImplementationFunc(func(ctx context.Context, method string, args []any) (any, error) {
		return "ranked by model", nil
	})

	reg := experiment.NewBuilder("search.Ranker").
		Trial("control", control).
		Trial("ml", ml).
		Default("control").
		SelectBy(experiment.ModeValue, "search.ranker.trial").
		OnError(experiment.RedirectDefault()).
		MustBuild()

	resolver, err := route.NewMapResolver(reg)
	if err != nil {
		fmt.Println("resolver:", err)
		return
	}

	router, err := route.NewRouter(route.RouterConfig{
		Resolver: resolver,
		Values:   selection.MapValueSource{"search.ranker.trial": "ml"},
	})
	if err != nil {
		fmt.Println("router:", err)
		return
	}

	result, err := router.Call(context.Background(), reg, "Rank", "best pizza")
	if err != nil {
		fmt.Println("call:", err)
		return
	}
	fmt.Println(result)
	// Output:
	// ranked by model
}

func ExampleRouter_Call_stickyRouting() {
	variantA := route.ImplementationFunc(func(ctx context.Context, method string, args []any) (any, error) {
		return "variant-a", nil
	})
	variantB := route.ImplementationFunc(func(ctx context.Context, method string, args []any) (any, error) {
		return "variant-b", nil
	})

	reg := experiment.NewBuilder("checkout.Pricer").
		Trial("a", variantA).
		Trial("b", variantB).
		Default("a").
		SelectBy(experiment.ModeSticky, "checkout.pricer").
		MustBuild()

	resolver, err := route.NewMapResolver(reg)
	if err != nil {
		fmt.Println("resolver:", err)
		return
	}
	router, err := route.NewRouter(route.RouterConfig{Resolver: resolver})
	if err != nil {
		fmt.Println("router:", err)
		return
	}

	// The same identity lands on the same variant on every call.
	ctx := selection.WithIdentity(context.Background(), "user-42")
	first, _ := router.Call(ctx, reg, "Price")
	second, _ := router.Call(ctx, reg, "Price")
	fmt.Println(first == second)
	// Output:
	// true
}
