package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a translation failure.
type ErrorKind int

const (
	// KindUnknown is reported by KindOf for errors that are not *Error.
	KindUnknown ErrorKind = iota

	// InvalidArgument means the request was rejected before anything was spawned.
	InvalidArgument

	// HelperNotFound means no helper script exists at any known location.
	HelperNotFound

	// InterpreterNotFound means no usable interpreter was found for the helper.
	InterpreterNotFound

	// HelperExecutionFailed covers spawn failures and non-zero helper exits.
	HelperExecutionFailed

	// ProviderNotFound means the registry has no usable provider for an id.
	ProviderNotFound

	// Cancelled means the caller's context ended before the helper finished.
	Cancelled
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case HelperNotFound:
		return "helper not found"
	case InterpreterNotFound:
		return "interpreter not found"
	case HelperExecutionFailed:
		return "helper execution failed"
	case ProviderNotFound:
		return "provider not found"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the failure type produced by providers and the registry.
type Error struct {
	Kind ErrorKind

	// Provider is the id of the provider that failed, if known.
	Provider string

	// Message is a human-readable description. For HelperExecutionFailed it
	// holds the helper's stderr verbatim.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	msg := strings.TrimRight(e.Message, "\r\n")
	if e.Provider != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, e.Provider)
	}

	switch {
	case msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Err)
	case msg != "":
		return fmt.Sprintf("%s: %s", prefix, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return prefix
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, providerID string, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Provider: providerID,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err (or any error in its chain) is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}
