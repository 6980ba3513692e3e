package entity

import "errors"

// Error kinds for the provider boundary. Adapters wrap these so callers can
// pick a recovery policy with errors.Is instead of string matching.
var (
	// ErrUpstreamUnavailable covers non-2xx responses, transport failures
	// and per-call timeouts from a balance or price provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse covers 2xx responses whose body does not match
	// the expected shape. Recovered identically to ErrUpstreamUnavailable.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrInvalidConfig is raised at config-load time for bad wallet
	// addresses, missing provider endpoints and the like.
	ErrInvalidConfig = errors.New("invalid configuration")
)
