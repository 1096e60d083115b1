package resilience

import (
	"sort"
	"sync"
)

// KillSwitch is an out-of-band override that disables a whole experiment
// or individual trial keys. The engine only reads it; operators mutate it
// from outside the call path. Last write wins; no transactional isolation.
//
// Contract:
// - Concurrency: safe for concurrent reads under concurrent writes.
type KillSwitch struct {
	mu          sync.RWMutex
	experiments map[string]struct{}
	trials      map[trialRef]struct{}
}

type trialRef struct {
	serviceType string
	trialKey    string
}

// NewKillSwitch creates a kill switch with nothing disabled.
func NewKillSwitch() *KillSwitch {
	return &KillSwitch{
		experiments: make(map[string]struct{}),
		trials:      make(map[trialRef]struct{}),
	}
}

// DisableExperiment disables every call through the named service type.
func (ks *KillSwitch) DisableExperiment(serviceType string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.experiments[serviceType] = struct{}{}
}

// EnableExperiment re-enables the named service type.
func (ks *KillSwitch) EnableExperiment(serviceType string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	delete(ks.experiments, serviceType)
}

// ExperimentDisabled reports whether the whole experiment is disabled.
func (ks *KillSwitch) ExperimentDisabled(serviceType string) bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	_, disabled := ks.experiments[serviceType]
	return disabled
}

// DisableTrial disables one trial key of a service type. Calls preferring
// that trial fall back per the registration's error policy.
func (ks *KillSwitch) DisableTrial(serviceType, trialKey string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.trials[trialRef{serviceType, trialKey}] = struct{}{}
}

// EnableTrial re-enables one trial key.
func (ks *KillSwitch) EnableTrial(serviceType, trialKey string) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	delete(ks.trials, trialRef{serviceType, trialKey})
}

// TrialDisabled reports whether one trial key is disabled.
func (ks *KillSwitch) TrialDisabled(serviceType, trialKey string) bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	_, disabled := ks.trials[trialRef{serviceType, trialKey}]
	return disabled
}

// Snapshot returns the currently disabled experiments and trials, sorted
// for stable output.
func (ks *KillSwitch) Snapshot() KillSwitchSnapshot {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	snap := KillSwitchSnapshot{
		Experiments: make([]string, 0, len(ks.experiments)),
		Trials:      make([]DisabledTrial, 0, len(ks.trials)),
	}
	for st := range ks.experiments {
		snap.Experiments = append(snap.Experiments, st)
	}
	for ref := range ks.trials {
		snap.Trials = append(snap.Trials, DisabledTrial{
			ServiceType: ref.serviceType,
			TrialKey:    ref.trialKey,
		})
	}

	sort.Strings(snap.Experiments)
	sort.Slice(snap.Trials, func(i, j int) bool {
		a, b := snap.Trials[i], snap.Trials[j]
		if a.ServiceType != b.ServiceType {
			return a.ServiceType < b.ServiceType
		}
		return a.TrialKey < b.TrialKey
	})
	return snap
}

// KillSwitchSnapshot is a point-in-time view of the disabled sets.
type KillSwitchSnapshot struct {
	Experiments []string
	Trials      []DisabledTrial
}

// DisabledTrial identifies one disabled (service type, trial key) pair.
type DisabledTrial struct {
	ServiceType string
	TrialKey    string
}
