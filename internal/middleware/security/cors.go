package security

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS lets browser front ends on the allowed origins call the API. "*"
// allows every origin.
type CORS struct {
	cors *cors.Cors
}

func NewCORS(allowedOrigins []string) *CORS {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	// An empty list would mean "allow all" to the library
	if len(origins) == 0 {
		origins = []string{"null"}
	}

	return &CORS{cors: cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         600,
	})}
}

// Middleware answers preflight requests and decorates allowed responses.
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return c.cors.Handler(next)
}
