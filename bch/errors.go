package bch

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by every construction-time validation
// failure, so callers can test for it with errors.Is regardless of the
// specific message, matching the sentinel-wrapping idiom used across the
// corpus (e.g. _examples/Observe-l-RL-quic-Raptor/go/fec/packet_rs.go's
// plain errors.New for its own bad-parameter checks, generalized here to
// a wrapped sentinel since this package's validation has more failure
// shapes worth distinguishing from unrelated errors).
var ErrInvalidParams = errors.New("bch: invalid parameters")

func errConstruction(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
