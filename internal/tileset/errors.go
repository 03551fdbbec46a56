package tileset

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by Parse, Validate and Serialize matches
// exactly one of these with errors.Is.
var (
	ErrMalformedInput     = errors.New("malformed input")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidReference   = errors.New("invalid tile reference")
	ErrInvalidColorIndex  = errors.New("invalid color index")
	ErrMalformedWangID    = errors.New("malformed wang id")
	ErrInvalidProbability = errors.New("invalid probability")
	ErrInvalidGeometry    = errors.New("invalid geometry")
)

// ParseError locates a single descriptor violation.
type ParseError struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Field is the attribute path, e.g. "wangset[0].wangtile[3].wangid".
	Field string
	// TileID is meaningful only when HasTile is true.
	TileID  int
	HasTile bool
	Detail  string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("tileset: ")
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.HasTile {
		fmt.Fprintf(&b, " (tile %d)", e.TileID)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fieldErr(kind error, field, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Field: field, Detail: fmt.Sprintf(format, args...)}
}

func tileErr(kind error, field string, id int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Field: field, TileID: id, HasTile: true, Detail: fmt.Sprintf(format, args...)}
}
