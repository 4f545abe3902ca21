package policy

import "slices"

// Factor identifies one independently verifiable condition — a completed MFA
// challenge, a verified e-mail address, an accepted terms version. A factor
// carries no payload beyond its numeric identity.
type Factor uint32

// Permission identifies a grantable capability. A permission is granted when
// every factor it requires is satisfied; a permission that requires no
// factors is always granted.
type Permission uint32

// PermissionMap associates each permission with the factors it requires.
// Each permission key appears at most once; the same factor may appear under
// many permissions.
type PermissionMap map[Permission][]Factor

// Policy is one subject's satisfied factors plus permission requirements at
// one point in time. A Policy is immutable after construction: when the
// subject's claims change, the caller builds a replacement instead of
// patching the old instance. Query methods are safe for concurrent use.
//
//	Docs: docs/policy.md
type Policy struct {
	satisfied map[Factor]struct{}
	order     []Factor
	perms     PermissionMap

	memo memoCache
}

func newPolicy() *Policy {
	return &Policy{
		satisfied: make(map[Factor]struct{}),
		perms:     make(PermissionMap),
	}
}

// NewPolicy builds a Policy from an explicit satisfied-factor set and a
// ready-made permission map. Inputs are copied; duplicate satisfied factors
// collapse, keeping first-seen order. Nil inputs are treated as empty.
func NewPolicy(satisfied []Factor, perms PermissionMap) *Policy {
	p := newPolicy()
	for _, f := range satisfied {
		p.addSatisfied(f)
	}
	for id, required := range perms {
		p.perms[id] = slices.Clone(required)
	}
	return p
}

// FromRegistry builds a Policy for the named permissions, fetching each
// required-factor list from the registry. Permissions the registry does not
// know are left out of the policy and report [NotFound] when queried.
func FromRegistry(satisfied []Factor, reg *Registry, perms ...Permission) *Policy {
	p := newPolicy()
	for _, f := range satisfied {
		p.addSatisfied(f)
	}
	if reg == nil {
		return p
	}
	for _, id := range perms {
		required, ok := reg.Required(id)
		if !ok {
			continue
		}
		p.perms[id] = required
	}
	return p
}

func (p *Policy) addSatisfied(f Factor) {
	if _, dup := p.satisfied[f]; dup {
		return
	}
	p.satisfied[f] = struct{}{}
	p.order = append(p.order, f)
}

// Permissions returns every permission the policy knows, ascending by id.
func (p *Policy) Permissions() []Permission {
	ids := make([]Permission, 0, len(p.perms))
	for id := range p.perms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RequiredFactors returns a copy of the factor list the policy holds for the
// permission, or false when the permission is absent.
func (p *Policy) RequiredFactors(id Permission) ([]Factor, bool) {
	required, ok := p.perms[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(required), true
}

// Empty reports whether the policy has no satisfied factors and no
// permissions. An empty policy serializes to the empty string.
func (p *Policy) Empty() bool {
	return len(p.order) == 0 && len(p.perms) == 0
}

// satisfiedValues returns the satisfied factors as raw values, ascending.
// The serializer depends on the ordering for stable output.
func (p *Policy) satisfiedValues() []uint32 {
	vs := make([]uint32, 0, len(p.order))
	for _, f := range p.order {
		vs = append(vs, uint32(f))
	}
	slices.Sort(vs)
	return vs
}
