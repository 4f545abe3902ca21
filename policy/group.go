package policy

import "strings"

// EncodeGroup joins the radix-32 encoding of each value with commas.
// An empty sequence encodes to the empty string.
func EncodeGroup(vs []uint32) string {
	if len(vs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EncodeUint(v))
	}

	return b.String()
}

// DecodeGroup splits on commas and decodes each field with [DecodeUint].
// The empty string decodes to an empty sequence, not an error; an empty
// field between commas surfaces [ErrEmptyInput] from the integer codec.
func DecodeGroup(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]uint32, 0, len(parts))
	for _, part := range parts {
		v, err := DecodeUint(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}
