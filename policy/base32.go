package policy

import "fmt"

// alphabet maps digit value to symbol: 0-9 then a-v. Encoding always emits
// lowercase; decoding additionally accepts A-V as the same values.
const alphabet = "0123456789abcdefghijklmnopqrstuv"

const maxUint32 = uint64(1)<<32 - 1

// smallEncoded serves encodes for values below 1024 without allocating.
var smallEncoded [1024]string

func init() {
	for i := range smallEncoded {
		smallEncoded[i] = encodeUint32(uint32(i))
	}
}

// EncodeUint renders v as a radix-32 string, most significant digit first,
// with no leading zeros. EncodeUint(0) is "0", never the empty string.
//
//	Docs: docs/policy.md
func EncodeUint(v uint32) string {
	if v < uint32(len(smallEncoded)) {
		return smallEncoded[v]
	}
	return encodeUint32(v)
}

func encodeUint32(v uint32) string {
	if v == 0 {
		return "0"
	}

	// 32 bits at 5 bits per digit is at most 7 digits.
	var buf [7]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = alphabet[v%32]
		v /= 32
	}

	return string(buf[i:])
}

// DecodeUint parses a radix-32 string back to its value. Decoding is
// case-insensitive. It fails with [ErrEmptyInput] on a zero-length token,
// [ErrInvalidCharacter] on a byte outside the alphabet, and [ErrOverflow]
// once the accumulated value exceeds the unsigned 32-bit range.
//
//	Docs: docs/policy.md
func DecodeUint(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, ErrEmptyInput
	}

	var r uint64
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i])
		if !ok {
			return 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, s[i], i)
		}
		// r never exceeds maxUint32 entering an iteration, so r*32+d
		// stays far below the uint64 ceiling.
		r = r*32 + uint64(d)
		if r > maxUint32 {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}
	}

	return uint32(r), nil
}

func digitValue(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c >= 'a' && c <= 'v':
		return uint64(c-'a') + 10, true
	case c >= 'A' && c <= 'V':
		return uint64(c-'A') + 10, true
	}
	return 0, false
}
