package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdminToken(t *testing.T) {
	h := RequireAdminToken("ops-token", slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{name: "admin header", header: HeaderAdminToken, value: "ops-token", want: http.StatusOK},
		{name: "bearer credential", header: "Authorization", value: "Bearer ops-token", want: http.StatusOK},
		{name: "wrong token", header: HeaderAdminToken, value: "guess", want: http.StatusUnauthorized},
		{name: "basic auth ignored", header: "Authorization", value: "Basic b3BzLXRva2Vu", want: http.StatusUnauthorized},
		{name: "missing", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
