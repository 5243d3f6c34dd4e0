package vks

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrOutOfPoolSpace is returned when a resource pool has no room left
	// for an allocation of the requested size and alignment.
	ErrOutOfPoolSpace = errors.New("insufficient space in resource pool")

	// ErrZeroExtent is returned when an image is created with a zero width
	// or height.
	ErrZeroExtent = errors.New("image extent has a zero length dimension")

	// ErrNoSuitableMemoryType is returned when no device memory type
	// satisfies an allocation request.
	ErrNoSuitableMemoryType = errors.New("no suitable memory type found")

	// ErrNoPipelineBound is returned when a draw or dispatch is recorded
	// without a pipeline bound at the relevant bind point.
	ErrNoPipelineBound = errors.New("no pipeline bound")

	// ErrNoIndexBufferBound is returned when an indexed draw is recorded
	// without an index buffer bound.
	ErrNoIndexBufferBound = errors.New("no index buffer bound")

	// ErrNoVertexBufferBound is returned when a draw is recorded without
	// a vertex buffer bound to a binding the pipeline consumes.
	ErrNoVertexBufferBound = errors.New("no vertex buffer bound")

	// ErrMissingUsage is returned when a command is recorded against a
	// resource that was not created with the usage the command requires.
	ErrMissingUsage = errors.New("resource lacks required usage")

	// ErrInvalidSPIRV is returned when a shader binary is not valid SPIR-V.
	ErrInvalidSPIRV = errors.New("invalid SPIR-V binary")
)

// AccessError reports a denied GPU access to a resource, either because two
// recorded commands conflict in a way that can't be resolved with a barrier
// or because a submission would race with an earlier one still in flight.
type AccessError struct {
	// Resource is the label of the resource that was denied.
	Resource string
	// Command is the name of the recorded command which uses the resource,
	// when known.
	Command string
	// Exclusive is true if the denied access was a write.
	Exclusive bool
	// Reason describes why the access was denied.
	Reason string
}

func (e *AccessError) Error() string {
	access := "read"
	if e.Exclusive {
		access = "write"
	}
	if e.Command != "" {
		return "access denied: " + access + " of " + e.Resource + " by " + e.Command + ": " + e.Reason
	}
	return "access denied: " + access + " of " + e.Resource + ": " + e.Reason
}

// IsAccessDenied reports whether err is (or wraps) an AccessError.
func IsAccessDenied(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
