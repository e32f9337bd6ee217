// Package kinds defines the single tagged error value shared by every layer
// of the BTF decoder and query engine, so callers can switch on one Kind
// enum instead of a different error type per package.
package kinds

import "fmt"

// ErrorKind identifies which invariant or decoding rule failed.
type ErrorKind int

const (
	// Source layer.
	SourceUnavailable ErrorKind = iota

	// Header layer.
	BadMagic
	UnsupportedVersion
	UnknownFlags
	BadHeaderLength
	SectionOutOfBounds

	// Byte reader layer.
	Truncated

	// String table layer.
	BadStringOffset
	UnterminatedString
	BadStringEncoding

	// Type decoder layer.
	UnknownKind
	TruncatedType
	BadIntegerEncoding
	BadReservedBits
	TrailingBytes
	DanglingTypeRef

	// Query layer.
	UnknownName
	BadTypeID
	NoSizeForKind
	EmptyPathSegment
	UnknownField
	NotAggregate
	BadArrayIndex
	ArrayIndexOutOfRange
	ResolutionCycle
)

var names = map[ErrorKind]string{
	SourceUnavailable:    "SourceUnavailable",
	BadMagic:             "BadMagic",
	UnsupportedVersion:   "UnsupportedVersion",
	UnknownFlags:         "UnknownFlags",
	BadHeaderLength:      "BadHeaderLength",
	SectionOutOfBounds:   "SectionOutOfBounds",
	Truncated:            "Truncated",
	BadStringOffset:      "BadStringOffset",
	UnterminatedString:   "UnterminatedString",
	BadStringEncoding:    "BadStringEncoding",
	UnknownKind:          "UnknownKind",
	TruncatedType:        "TruncatedType",
	BadIntegerEncoding:   "BadIntegerEncoding",
	BadReservedBits:      "BadReservedBits",
	TrailingBytes:        "TrailingBytes",
	DanglingTypeRef:      "DanglingTypeRef",
	UnknownName:          "UnknownName",
	BadTypeID:            "BadTypeID",
	NoSizeForKind:        "NoSizeForKind",
	EmptyPathSegment:     "EmptyPathSegment",
	UnknownField:         "UnknownField",
	NotAggregate:         "NotAggregate",
	BadArrayIndex:        "BadArrayIndex",
	ArrayIndexOutOfRange: "ArrayIndexOutOfRange",
	ResolutionCycle:      "ResolutionCycle",
}

func (k ErrorKind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type returned across every decode and query
// layer. Message carries the human-readable detail; Cause, when present, is
// the lower-level error (a short read, a malformed UTF-8 sequence, ...) and
// is reachable through errors.Is/errors.As via Unwrap.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func New(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, kinds.New(kinds.BadMagic, "")) style checks if they
// prefer that over a type switch on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
