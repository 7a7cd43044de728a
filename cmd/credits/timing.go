package credits

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrMalformedTime = errors.New("malformed time")

var thousand = big.NewRat(1000, 1)

// ParseMillis converts a decimal seconds string such as "12.345" to whole
// milliseconds, truncating toward zero. The value is parsed as an exact decimal
// fraction; a float would move reveal boundaries by a millisecond.
func ParseMillis(s string) (int64, error) {
	if s == "" || strings.ContainsAny(s, "/ \t") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%w: negative time %q", ErrMalformedTime, s)
	}
	r.Mul(r, thousand)
	ms := new(big.Int).Quo(r.Num(), r.Denom())
	if !ms.IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrMalformedTime, s)
	}
	return ms.Int64(), nil
}

// splitSegment splits "[duration]payload" into its parts.
func splitSegment(segment string) (string, string, error) {
	if !strings.HasPrefix(segment, "[") {
		return "", "", fmt.Errorf("%w: segment %q does not start with '['", ErrMalformedScript, segment)
	}
	end := strings.IndexByte(segment, ']')
	if end < 0 {
		return "", "", fmt.Errorf("%w: segment %q has no closing ']'", ErrMalformedScript, segment)
	}
	return segment[1:end], segment[end+1:], nil
}
