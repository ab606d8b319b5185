package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/promptvaultapp/promptvault-server/internal/http/response"
)

// openPaths are reachable without an API key. The OpenAPI document and
// docs UI stay open so clients can discover the API before configuring
// credentials.
var openPaths = []string{
	"/health",
	"/openapi",
	"/docs",
	"/schemas",
}

// requireAPIKey is middleware that validates the shared API key from the
// Authorization header. Loopback clients may be exempted via config so the
// local CLI works without any setup.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range openPaths {
			if r.URL.Path == p || strings.HasPrefix(r.URL.Path, p+"/") {
				next.ServeHTTP(w, r)
				return
			}
		}

		if s.config.Auth.AllowLocalhostBypass && isLoopback(r) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		// Constant-time comparison so the key can't be guessed byte by byte.
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.config.Auth.APIKey)) != 1 {
			response.Unauthorized(w, "Invalid API key", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isLoopback reports whether the request originated from the local host.
func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
