package experiment

import "sort"

// BuildCandidates expands a preferred trial key into the ordered candidate
// list dictated by the registration's error policy. The result always
// starts with the preferred key and never repeats a key. Pure function:
// no I/O, no shared state.
//
// Keys in the result are not guaranteed to name registered trials; a stale
// key resolves to the default implementation at attempt time.
func BuildCandidates(preferred string, reg *Registration) []string {
	policy := reg.policy

	switch policy.Kind {
	case PolicyThrow:
		return []string{preferred}

	case PolicyRedirectDefault:
		if preferred == reg.defaultKey {
			return []string{preferred}
		}
		return []string{preferred, reg.defaultKey}

	case PolicyRedirectAny:
		candidates := []string{preferred}
		rest := make([]string, 0, len(reg.trialKeys))
		for _, k := range reg.trialKeys {
			if k != preferred {
				rest = append(rest, k)
			}
		}
		sort.Strings(rest)
		return append(candidates, rest...)

	case PolicyRedirectSpecific:
		if preferred == policy.FallbackKey {
			return []string{preferred}
		}
		return []string{preferred, policy.FallbackKey}

	case PolicyRedirectOrdered:
		candidates := []string{preferred}
		for _, k := range policy.OrderedKeys {
			if k == preferred || contains(candidates, k) {
				continue
			}
			candidates = append(candidates, k)
		}
		return candidates

	default:
		return []string{preferred}
	}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
