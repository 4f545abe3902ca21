package policy

import (
	"fmt"
	"slices"
	"strings"
)

// ParseOption customizes how Deserialize converts raw integers into typed
// identifiers. The defaults are plain numeric casts; typed identifier
// schemes (enums, newtypes with validation) plug in here without the codec
// knowing about them.
type ParseOption func(*parseOptions)

type parseOptions struct {
	factor     func(uint32) Factor
	permission func(uint32) Permission
}

// WithFactorConverter replaces the default uint32-to-Factor cast.
func WithFactorConverter(fn func(uint32) Factor) ParseOption {
	return func(o *parseOptions) {
		if fn != nil {
			o.factor = fn
		}
	}
}

// WithPermissionConverter replaces the default uint32-to-Permission cast.
func WithPermissionConverter(fn func(uint32) Permission) ParseOption {
	return func(o *parseOptions) {
		if fn != nil {
			o.permission = fn
		}
	}
}

// Serialize renders the policy as its compact wire string.
//
// The satisfied factors are emitted after "!", ascending. Permissions are
// grouped by canonical requirement key — the required factors sorted,
// deduplicated, encoded, and comma-joined — so that permissions sharing a
// requirement are emitted once behind a single "+" part. Groups appear in
// first-seen order walking permission ids ascending; inter-group order is
// not a documented contract, only stability for identical input. An empty
// policy serializes to "". A nil policy fails with [ErrNullInput].
//
//	Docs: docs/policy.md
func Serialize(p *Policy) (string, error) {
	if p == nil {
		return "", ErrNullInput
	}

	var b strings.Builder

	if vs := p.satisfiedValues(); len(vs) > 0 {
		b.WriteByte('!')
		b.WriteString(EncodeGroup(vs))
	}

	if len(p.perms) > 0 {
		writeGroups(&b, p.perms)
	}

	return b.String(), nil
}

type permGroup struct {
	key string
	ids []Permission
}

func writeGroups(b *strings.Builder, perms PermissionMap) {
	ids := make([]Permission, 0, len(perms))
	for id := range perms {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	index := make(map[string]int, len(ids))
	groups := make([]permGroup, 0, len(ids))
	for _, id := range ids {
		key := canonicalKey(perms[id])
		gi, seen := index[key]
		if !seen {
			gi = len(groups)
			groups = append(groups, permGroup{key: key})
			index[key] = gi
		}
		groups[gi].ids = append(groups[gi].ids, id)
	}

	for i, g := range groups {
		if i == 0 {
			b.WriteByte('#')
		} else {
			b.WriteByte('&')
		}
		for j, id := range g.ids {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EncodeUint(uint32(id)))
		}
		if g.key != "" {
			b.WriteByte('+')
			b.WriteString(g.key)
		}
	}
}

// canonicalKey is the merge key for grouping: required factors sorted
// ascending, duplicates collapsed, each encoded, comma-joined. Textual
// identity of keys is set identity of requirements. The empty requirement
// canonicalizes to the empty key.
func canonicalKey(required []Factor) string {
	if len(required) == 0 {
		return ""
	}

	vs := make([]uint32, 0, len(required))
	for _, f := range required {
		vs = append(vs, uint32(f))
	}
	slices.Sort(vs)
	vs = slices.Compact(vs)

	return EncodeGroup(vs)
}

// Deserialize parses a wire string back into a Policy.
//
// Both sections are optional: a missing "!" section means no satisfied
// factors, a missing "#" section means no permissions, and the empty string
// is the empty policy. Every permission id in a group shares the group's
// decoded requirement list, which is read-only from then on. Structural
// violations fail with [ErrMalformedGrammar]; bad integer fields surface
// the codec error ([ErrEmptyInput], [ErrInvalidCharacter], [ErrOverflow]).
// Deserialize never silently drops a field.
//
//	Docs: docs/policy.md
func Deserialize(s string, opts ...ParseOption) (*Policy, error) {
	o := parseOptions{
		factor:     func(v uint32) Factor { return Factor(v) },
		permission: func(v uint32) Permission { return Permission(v) },
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := newPolicy()

	rest := s
	if strings.HasPrefix(rest, "!") {
		var part string
		if i := strings.IndexByte(rest, '#'); i >= 0 {
			part, rest = rest[1:i], rest[i:]
		} else {
			part, rest = rest[1:], ""
		}
		if err := parseSatisfied(p, part, &o); err != nil {
			return nil, err
		}
	}

	if rest == "" {
		return p, nil
	}
	if rest[0] != '#' {
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedGrammar, rest[0])
	}
	if err := parseGroups(p, rest[1:], &o); err != nil {
		return nil, err
	}

	return p, nil
}

func parseSatisfied(p *Policy, part string, o *parseOptions) error {
	if part == "" {
		return fmt.Errorf("%w: empty satisfied-factor list", ErrMalformedGrammar)
	}
	if i := strings.IndexAny(part, "!&+"); i >= 0 {
		return fmt.Errorf("%w: %q in satisfied-factor list", ErrMalformedGrammar, part[i])
	}

	vs, err := DecodeGroup(part)
	if err != nil {
		return err
	}
	for _, v := range vs {
		p.addSatisfied(o.factor(v))
	}
	return nil
}

func parseGroups(p *Policy, body string, o *parseOptions) error {
	if body == "" {
		return fmt.Errorf("%w: empty permission section", ErrMalformedGrammar)
	}

	for _, raw := range strings.Split(body, "&") {
		if raw == "" {
			return fmt.Errorf("%w: empty permission group", ErrMalformedGrammar)
		}
		if i := strings.IndexAny(raw, "!#"); i >= 0 {
			return fmt.Errorf("%w: %q inside permission group", ErrMalformedGrammar, raw[i])
		}

		permPart, factorPart, hasRequirement := strings.Cut(raw, "+")
		if permPart == "" {
			return fmt.Errorf("%w: group without permission ids", ErrMalformedGrammar)
		}

		var required []Factor
		if hasRequirement {
			if factorPart == "" {
				return fmt.Errorf("%w: empty factor requirement", ErrMalformedGrammar)
			}
			if strings.IndexByte(factorPart, '+') >= 0 {
				return fmt.Errorf("%w: second '+' inside group", ErrMalformedGrammar)
			}
			fvs, err := DecodeGroup(factorPart)
			if err != nil {
				return err
			}
			required = make([]Factor, len(fvs))
			for i, v := range fvs {
				required[i] = o.factor(v)
			}
		}

		pvs, err := DecodeGroup(permPart)
		if err != nil {
			return err
		}
		for _, v := range pvs {
			// Every id in the group points at the same requirement
			// slice; it is never written after parse.
			p.perms[o.permission(v)] = required
		}
	}

	return nil
}
