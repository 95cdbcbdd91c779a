package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rein-network/rein-node/internal/api"
)

// readText returns the request body as text. Bodies over the BodyLimit are reported as
// RequestTooLarge.
func readText(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", bodyError(err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", api.NewMalformedRequestError("request body is empty")
	}
	return string(body), nil
}

// decodeJSON decodes the request body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return api.NewRequestTooLargeError(fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
	}
	return api.WrapMalformedRequestError(err, "failed to read request body")
}
