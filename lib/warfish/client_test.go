package warfish

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient points a Client at a stub site.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

// restHandler dispatches on the `_method` query parameter like the live
// REST endpoint does.
func restHandler(t *testing.T, methods map[string]http.HandlerFunc) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/rest", func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Query().Get("_method")
		handler, ok := methods[method]
		if !ok {
			t.Errorf("unexpected REST method %q", method)
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	})
	return mux
}

func intPtr(n int) *int { return &n }
