package httpadapter

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
)

const requestIDHeader = "X-Request-ID"

// requestIDHeaders assigns a UUID to requests that arrive without an
// X-Request-ID and echoes the id back. It runs in front of chi's RequestID,
// which stores the header value in the request context for the logger.
func requestIDHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// allowedHosts rejects requests whose Host header is not listed. "*" allows
// everything; ".example.com" and "*.example.com" match example.com and all
// of its subdomains. Ports are ignored.
func allowedHosts(hosts []string) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		AllowedHosts:         hostPatterns(hosts),
		AllowedHostsAreRegex: true,
	})
	s.SetBadHostHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusBadRequest, "Invalid HTTP_HOST header.")
	}))
	return s.Handler
}

// hostPatterns turns host entries into anchored, case-insensitive regexes
// that also accept an optional port. A nil result disables the check.
func hostPatterns(hosts []string) []string {
	const port = `\.?(?::\d+)?$`

	patterns := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
			continue
		case h == "*":
			return nil
		case strings.HasPrefix(h, "*."), strings.HasPrefix(h, "."):
			domain := regexp.QuoteMeta(strings.TrimPrefix(strings.TrimPrefix(h, "*"), "."))
			patterns = append(patterns, `(?i)^(?:[^.:\[\]/]+\.)*`+domain+port)
		case strings.Contains(h, ":"):
			ip := regexp.QuoteMeta(strings.Trim(h, "[]"))
			patterns = append(patterns, `(?i)^\[`+ip+`\]`+port)
		default:
			patterns = append(patterns, `(?i)^`+regexp.QuoteMeta(h)+port)
		}
	}
	return patterns
}
