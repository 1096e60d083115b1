// Package selection picks the preferred trial key for each routed call.
//
// Four strategies exist, all behind the Provider interface:
//
//   - FlagProvider maps a boolean flag backend to the fixed trial keys
//     "true" and "false".
//   - ValueProvider reads the preferred key as a string from a
//     configuration backend.
//   - StickyProvider assigns a stable trial per caller identity through
//     a deterministic, distribution-preserving hash.
//   - Custom providers register in a Registry under a mode identifier.
//
// Selection never fails a call. An empty key, a missing backend value or
// a provider error all mean the same thing to the router: use the default
// trial key as the preferred key.
//
// # Sticky routing
//
// The StickyRouter hashes identity and experiment name together, so the
// same identity can land in different trials of different experiments:
//
//	router := selection.NewStickyRouter()
//	key, err := router.SelectTrial("user-42", "search.ranker", keys)
//
// Identities travel on the call context via WithIdentity, or can be
// derived from a bearer token's subject with IdentityFromToken.
package selection
