package ingress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxBodySize caps inbound notification bodies.
const MaxBodySize = 64 << 10

// BindJSON decodes a single JSON object from the request body. Unknown fields
// are ignored so the sender can add attributes freely. A missing Content-Type
// is accepted; any other media type than application/json is not.
func BindJSON() Bind {
	return func(r *http.Request, v any) error {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, ct)
			}
		}

		body := http.MaxBytesReader(nil, r.Body, MaxBodySize)
		dec := json.NewDecoder(body)
		if err := dec.Decode(v); err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxErr):
				return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
			case errors.Is(err, io.EOF):
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			default:
				return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
			}
		}

		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}
