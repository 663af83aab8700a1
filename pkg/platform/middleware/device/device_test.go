package device

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"casetrack/pkg/requestcontext"
)

const (
	googlebotUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	chromeUA    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneUA    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassUnknown, Classify(""))
	assert.Equal(t, ClassBot, Classify(googlebotUA))
	assert.Equal(t, ClassDesktop, Classify(chromeUA))
	assert.Equal(t, ClassMobile, Classify(iphoneUA))
}

func TestRejectBots(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	called := false
	h := RejectBots(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("bot is refused", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodPost, "/report/", nil)
		r = r.WithContext(requestcontext.WithClientMetadata(r.Context(), "192.0.2.1", googlebotUA))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("browser passes", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodPost, "/report/", nil)
		r = r.WithContext(requestcontext.WithClientMetadata(r.Context(), "192.0.2.1", chromeUA))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, called)
	})
}
