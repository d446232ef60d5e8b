package jsongram

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeUnsupportedSchema = "unsupported_schema"
	CodeDepthExceeded     = "depth_exceeded"
	CodePartialInference  = "partial_inference"
	// Decode-time codes (jsondec)
	CodeInvalidType  = "invalid_type"
	CodeInvalidValue = "invalid_value"
	CodeRequired     = "required"
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
)

var (
	// ErrUnsupportedSchema is the cause of the issue returned when nothing
	// about a type's shape could be recorded.
	ErrUnsupportedSchema = errors.New("jsongram: unsupported schema")
	// ErrDepthExceeded is returned when inference nests deeper than
	// CompileOpt.MaxDepth, which in practice means a self-referential type.
	ErrDepthExceeded = errors.New("jsongram: max depth exceeded")
)

// Issue represents a single compilation or decoding finding.
type Issue struct {
	Path    string // JSON Pointer of the value concerned (for example: /items/0/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input (-1 when unknown).
}

func (it Issue) String() string {
	path := it.Path
	if path == "" {
		path = "/"
	}
	s := it.Code + " at " + path
	if it.Hint != "" {
		s += " (" + it.Hint + ")"
	}
	return s
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is can match sentinel errors.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasCode reports whether any issue carries code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
