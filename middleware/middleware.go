// Package middleware decodes JSON request bodies through jsondec and passes
// the typed value to the next handler in the request context.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/jsondec"
)

// ctxKeyDecoded is a typed context key for storing a decoded *T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a decoded value to the context.
func ContextWithDecoded[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves a decoded value from context.
func DecodedFromContext[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(*T)
	return v, ok
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are limited to 1 MiB
func DefaultOptions() []jsondec.Option {
	return []jsondec.Option{
		jsondec.WithDuplicates(jsondec.DuplicatesError),
		jsondec.WithMaxBytes(1 << 20),
	}
}

// Decode returns middleware that decodes the request body into a new T.
// Requests that fail to decode get a 400 (413 past the size limit) with an
// ErrorBody and never reach next.
func Decode[T any, PT interface {
	*T
	jsongram.Decodable
}](opts ...jsondec.Option) func(http.Handler) http.Handler {
	if len(opts) == 0 {
		opts = DefaultOptions()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := new(T)
			if err := jsondec.NewDecoder(r.Body, opts...).Decode(PT(v)); err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, jsondec.ErrTooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				WriteError(w, status, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}

// IssuePayload is the JSON form of a jsongram.Issue.
type IssuePayload struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorBody is the JSON body of error responses.
type ErrorBody struct {
	Error  string         `json:"error"`
	Issues []IssuePayload `json:"issues,omitempty"`
}

// Payloads shapes Issues for JSON responses.
func Payloads(iss jsongram.Issues) []IssuePayload {
	out := make([]IssuePayload, 0, len(iss))
	for _, it := range iss {
		out = append(out, IssuePayload{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint})
	}
	return out
}

// ErrorPayload builds an ErrorBody, listing the issues err carries, if any.
func ErrorPayload(err error) ErrorBody {
	body := ErrorBody{Error: err.Error()}
	if iss, ok := jsongram.AsIssues(err); ok {
		body.Issues = Payloads(iss)
	}
	return body
}

// WriteError writes ErrorPayload(err) with the given status.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, ErrorPayload(err))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
