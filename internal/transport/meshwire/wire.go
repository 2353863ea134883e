package meshwire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// skip tells walk to step over a field the caller does not handle.
const skip = 0

// walk iterates the fields of an encoded message. fn returns the number of value
// bytes it consumed (negative on a protowire error) or skip.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m := fn(num, typ, b)
		if m == skip {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeUint32(v []byte, dst *uint32) int {
	x, n := protowire.ConsumeVarint(v)
	if n >= 0 {
		*dst = uint32(x)
	}
	return n
}

func consumeFixed32(v []byte, dst *uint32) int {
	x, n := protowire.ConsumeFixed32(v)
	if n >= 0 {
		*dst = x
	}
	return n
}

func consumeBool(v []byte, dst *bool) int {
	x, n := protowire.ConsumeVarint(v)
	if n >= 0 {
		*dst = protowire.DecodeBool(x)
	}
	return n
}

func consumeString(v []byte, dst *string) int {
	s, n := protowire.ConsumeString(v)
	if n >= 0 {
		*dst = s
	}
	return n
}

func consumeBytes(v []byte, dst *[]byte) int {
	x, n := protowire.ConsumeBytes(v)
	if n >= 0 {
		*dst = append([]byte(nil), x...)
	}
	return n
}

// consumeMessage hands the embedded message bytes to unmarshal.
func consumeMessage(v []byte, unmarshal func([]byte) error, errp *error) int {
	x, n := protowire.ConsumeBytes(v)
	if n < 0 {
		return n
	}
	if err := unmarshal(x); err != nil && *errp == nil {
		*errp = err
	}
	return n
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendFixed32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
