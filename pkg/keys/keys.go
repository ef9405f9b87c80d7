// Package keys encodes natural record keys into path segments that are
// legal in a hierarchical store and decodes them back.
package keys

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Codec converts between natural keys and stored path segments.
type Codec interface {
	Encode(key string) string
	Decode(segment string) string
}

// Escape tokens used by the legacy codec.
const (
	DotToken = "_DOT_"
	AtToken  = "_AT_"
)

// Legacy is the exact substitution codec existing datasets were written
// with: every "." becomes "_DOT_" and every "@" becomes "_AT_". A key that
// already contains either token text does not survive a round trip.
var Legacy Codec = legacyCodec{}

// Percent escapes "%" and every byte that is illegal or meaningful in a
// path segment as %XX. Every string round-trips.
var Percent Codec = percentCodec{}

type legacyCodec struct{}

func (legacyCodec) Encode(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, ".", DotToken), "@", AtToken)
}

func (legacyCodec) Decode(segment string) string {
	return strings.ReplaceAll(strings.ReplaceAll(segment, DotToken, "."), AtToken, "@")
}

type percentCodec struct{}

const hexDigits = "0123456789ABCDEF"

func mustEscape(b byte) bool {
	switch b {
	case '%', '.', '@', '$', '#', '[', ']', '/':
		return true
	}
	return b < 0x20 || b == 0x7f
}

func (percentCodec) Encode(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		if mustEscape(b) {
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0x0f])
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// Decode reverses Encode. Malformed escapes are kept literally.
func (percentCodec) Decode(segment string) string {
	if !strings.Contains(segment, "%") {
		return segment
	}
	var sb strings.Builder
	sb.Grow(len(segment))
	for i := 0; i < len(segment); i++ {
		if segment[i] == '%' && i+2 < len(segment) {
			hi, ok1 := unhex(segment[i+1])
			lo, ok2 := unhex(segment[i+2])
			if ok1 && ok2 {
				sb.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		sb.WriteByte(segment[i])
	}
	return sb.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ForName returns the codec configured by name. An empty name selects
// Legacy.
func ForName(name string) (Codec, error) {
	switch name {
	case "", types.KeyEncodingLegacy:
		return Legacy, nil
	case types.KeyEncodingPercent:
		return Percent, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrKeyEncodingUnknown, name)
}
