package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// ClaimsFromRequest extracts and verifies the bearer token on a request.
// A request without an Authorization header returns (nil, nil); a present but
// invalid token returns an error.
func ClaimsFromRequest(r *http.Request, secret []byte) (*Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return nil, nil
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("malformed authorization header: %w", ErrInvalidToken)
	}
	return ParseToken(strings.TrimSpace(header[len(prefix):]), secret)
}
