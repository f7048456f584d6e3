package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

// MaxBodySize is the maximum allowed request body size (1 MB).
const MaxBodySize = 1 << 20

// DecodeJSON reads and decodes a JSON request body into dst.
// It returns user-friendly error messages instead of leaking Go internals.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var unmarshalTypeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	case errors.As(err, &unmarshalTypeErr):
		return fmt.Errorf("invalid value for field %q: expected %s", unmarshalTypeErr.Field, unmarshalTypeErr.Type)
	case errors.Is(err, io.EOF):
		return errors.New("request body is empty")
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body exceeds maximum size of %d bytes", MaxBodySize)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Errorf("unknown field %s", field)
	default:
		return errors.New("invalid JSON in request body")
	}
}

// QueryParams reads typed filter values from a request's query string and
// collects a field error for every value it cannot accept.
type QueryParams struct {
	values url.Values
	errs   map[string]string
}

// NewQueryParams wraps the query string of r
func NewQueryParams(r *http.Request) *QueryParams {
	return &QueryParams{values: r.URL.Query(), errs: map[string]string{}}
}

// String returns the trimmed value of name, or "" when absent
func (q *QueryParams) String(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

// OptionalInt parses name as an integer within [lo, hi]. It returns nil when
// the parameter is absent or invalid; invalid values are recorded.
func (q *QueryParams) OptionalInt(name string, lo, hi int) *int {
	raw := q.String(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		q.errs[name] = fmt.Sprintf("must be an integer between %d and %d", lo, hi)
		return nil
	}
	return &n
}

// Int parses name as an integer, returning def when it is absent or outside
// [lo, hi]. Only values that are not integers are recorded as errors.
func (q *QueryParams) Int(name string, def, lo, hi int) int {
	raw := q.String(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.errs[name] = "must be an integer"
		return def
	}
	if n < lo || n > hi {
		return def
	}
	return n
}

// OneOf returns the value of name when it is one of allowed, def when absent.
// Other values are recorded as errors.
func (q *QueryParams) OneOf(name, def string, allowed ...string) string {
	raw := q.String(name)
	if raw == "" {
		return def
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	q.errs[name] = "must be one of: " + strings.Join(allowed, ", ")
	return def
}

// Errors returns the collected field errors, or nil when there are none
func (q *QueryParams) Errors() map[string]string {
	if len(q.errs) == 0 {
		return nil
	}
	return q.errs
}

// QueryEnum parses name as a member of the enum E, case-insensitively.
// Absent parameters yield the zero value; unknown members are recorded.
func QueryEnum[E interface {
	~string
	database.Enum
}](q *QueryParams, name string) E {
	raw := q.String(name)
	if raw == "" {
		return ""
	}
	v := E(strings.ToUpper(raw))
	if !v.Valid() {
		q.errs[name] = "must be one of: " + strings.Join(v.Values(), ", ")
		return ""
	}
	return v
}
