// Package jsondec decodes JSON documents through the jsongram.Decoder
// protocol, so a type's single Decode method serves both grammar compilation
// and real decoding.
package jsondec

import (
	"errors"
	"io"

	"github.com/reoring/jsongram"
	eng "github.com/reoring/jsongram/internal/engine"
	"github.com/reoring/jsongram/source/gojson"
)

// ErrTooLarge is the cause of the issue reported when input exceeds the
// WithMaxBytes limit.
var ErrTooLarge = errors.New("max bytes exceeded")

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v jsongram.Decodable, opts ...Option) error {
	o := newOptions(opts)
	if o.MaxBytes > 0 && int64(len(data)) > o.MaxBytes {
		return jsongram.Issues{jsongram.IssueAt("", jsongram.CodeParseError, ErrTooLarge.Error(), ErrTooLarge)}
	}
	return decode(gojson.NewBytes(data), v, o)
}

// Decoder reads one JSON document from a stream.
type Decoder struct {
	r   io.Reader
	opt Options
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opt: newOptions(opts)}
}

// Decode reads the document and decodes it into v. Input after the first
// value, other than whitespace, is an error.
func (d *Decoder) Decode(v jsongram.Decodable) error {
	if d.opt.MaxBytes <= 0 {
		return decode(gojson.NewReader(d.r), v, d.opt)
	}
	cr := &countingReader{r: d.r, limit: d.opt.MaxBytes}
	err := decode(gojson.NewReader(cr), v, d.opt)
	if cr.exceeded {
		return jsongram.Issues{jsongram.IssueAt("", jsongram.CodeParseError, ErrTooLarge.Error(), ErrTooLarge)}
	}
	return err
}

type countingReader struct {
	r        io.Reader
	n, limit int64
	exceeded bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.exceeded {
		return 0, ErrTooLarge
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n > c.limit {
		c.exceeded = true
		return n, ErrTooLarge
	}
	return n, err
}

func decode(src eng.TokenSource, v jsongram.Decodable, o Options) error {
	if v == nil {
		return errors.New("jsondec: nil target")
	}
	var dup eng.DuplicateStrictness
	switch o.Duplicates {
	case DuplicatesWarn:
		dup = eng.DupWarn
	case DuplicatesIgnore:
		dup = eng.DupIgnore
	default:
		dup = eng.DupError
	}
	src = eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: dup,
		MaxDepth:    o.MaxDepth,
		IssueSink: func(si eng.SimpleIssue) {
			if o.OnWarning != nil {
				o.OnWarning(fromSimple(si))
			}
		},
	})
	root, err := eng.Decode(src)
	if err != nil {
		return sourceError(err)
	}
	return wrap(root, v.Decode(decoder{n: root}))
}

func fromSimple(si eng.SimpleIssue) jsongram.Issue {
	path := si.Path
	if path == "/" {
		path = ""
	}
	return jsongram.IssueAt(path, si.Code, si.Message, nil)
}

func sourceError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return jsongram.Issues{fromSimple(ie.SimpleIssue)}
	}
	return jsongram.Issues{jsongram.IssueAt("", jsongram.CodeParseError, err.Error(), err)}
}

// wrap attaches the node's path to errors returned by user Decode methods;
// Issues pass through untouched.
func wrap(n *eng.Node, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := jsongram.AsIssues(err); ok {
		return err
	}
	return jsongram.Issues{jsongram.IssueAt(n.Path, jsongram.CodeInvalidValue, err.Error(), err)}
}
