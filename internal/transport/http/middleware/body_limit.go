package middleware

import (
	"net/http"

	"sitecrew/internal/transport/http/api"
)

// BodyLimit caps request bodies on mutating methods. Oversized declared
// lengths are rejected before the handler reads anything; chunked bodies are
// capped by MaxBytesReader as they stream.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodPatch:
					if r.ContentLength > maxBytes {
						api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds limit", GetRequestID(r.Context()))
						return
					}
					r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
