package policy

import (
	"slices"
	"sync"
)

// Decision is the tri-state outcome of a permission check. Callers can
// distinguish a permission that is present but unsatisfied ([Denied]) from
// one the policy never mentions ([NotFound]); collapsing the two into a
// boolean loses the difference between "blocked" and "unknown capability".
type Decision uint8

const (
	// NotFound means the permission does not appear in the policy.
	NotFound Decision = iota
	// Denied means the permission is present but at least one required
	// factor is not satisfied.
	Denied
	// Granted means every required factor is satisfied.
	Granted
)

// Bool collapses the decision for callers that only gate on full grants.
func (d Decision) Bool() bool {
	return d == Granted
}

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "not found"
	}
}

// memoCache memoizes per-permission decisions for the lifetime of one
// Policy. Inputs are immutable, so an entry can never go stale and a racing
// recompute always writes the identical verdict; the lock only keeps the map
// itself race-clean.
type memoCache struct {
	mu       sync.RWMutex
	verdicts map[Permission]Decision
}

func (c *memoCache) get(id Permission) (Decision, bool) {
	c.mu.RLock()
	d, ok := c.verdicts[id]
	c.mu.RUnlock()
	return d, ok
}

func (c *memoCache) put(id Permission, d Decision) {
	c.mu.Lock()
	if c.verdicts == nil {
		c.verdicts = make(map[Permission]Decision)
	}
	c.verdicts[id] = d
	c.mu.Unlock()
}

// IsGranted answers whether the permission is granted under the policy.
// The verdict is memoized: the first query computes, later queries return
// the cached decision. Queries never fail — an unknown permission reports
// [NotFound].
//
//	Docs: docs/policy.md
func (p *Policy) IsGranted(id Permission) Decision {
	if d, ok := p.memo.get(id); ok {
		return d
	}

	required, known := p.perms[id]
	var d Decision
	switch {
	case !known:
		d = NotFound
	case p.FactorsSatisfied(required):
		d = Granted
	default:
		d = Denied
	}

	p.memo.put(id, d)
	return d
}

// MissingFactors returns the factors the permission still requires, in the
// order the requirement lists them. The result is empty when the permission
// is granted or absent from the policy.
func (p *Policy) MissingFactors(id Permission) []Factor {
	required, known := p.perms[id]
	if !known {
		return nil
	}

	var missing []Factor
	for _, f := range required {
		if !p.isSatisfied(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// SatisfiedFactors returns every factor the subject currently satisfies.
// Ordering is not part of the contract.
func (p *Policy) SatisfiedFactors() []Factor {
	return slices.Clone(p.order)
}

// SatisfiedFactorsFor narrows to one permission: the full required list when
// the permission is granted, otherwise the subset of its required factors
// that are individually satisfied. Absent permissions yield nil.
func (p *Policy) SatisfiedFactorsFor(id Permission) []Factor {
	required, known := p.perms[id]
	if !known {
		return nil
	}

	if p.IsGranted(id) == Granted {
		return slices.Clone(required)
	}

	var subset []Factor
	for _, f := range required {
		if p.isSatisfied(f) {
			subset = append(subset, f)
		}
	}
	return subset
}

// FactorsSatisfied reports whether every listed factor is satisfied,
// short-circuiting on the first miss. An empty list is satisfied.
func (p *Policy) FactorsSatisfied(fs []Factor) bool {
	for _, f := range fs {
		if !p.isSatisfied(f) {
			return false
		}
	}
	return true
}

func (p *Policy) isSatisfied(f Factor) bool {
	_, ok := p.satisfied[f]
	return ok
}
