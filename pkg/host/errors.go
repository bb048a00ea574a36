package host

import "errors"

// Error taxonomy for the host core. Warnings (unsupported ports, widened
// bounds, duplicate type names) are logged and recovered from; only the
// sentinels below abort the operation in progress. Check with errors.Is.
var (
	// ErrStateViolation indicates a lifecycle call made out of order, such
	// as Start before Setup or Cleanup while activated. This is a
	// programming error of the caller.
	ErrStateViolation = errors.New("lifecycle call out of order")

	// ErrInstantiation indicates the underlying plugin refused to
	// instantiate at the requested sample rate.
	ErrInstantiation = errors.New("plugin instantiation failed")

	// ErrParamRange indicates a parameter id outside the addressable index
	// space, or a write to a read-only output parameter.
	ErrParamRange = errors.New("parameter index out of range")

	// ErrDuplicateParam indicates a plugin declared two control ports with
	// the same symbol, which would collide in the parameter namespace.
	ErrDuplicateParam = errors.New("duplicate parameter name")
)
