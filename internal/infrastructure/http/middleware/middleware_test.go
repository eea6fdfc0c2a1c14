package middleware

import (
	"compress/gzip"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/shiliao/dietplan/internal/infrastructure/config"
	"github.com/shiliao/dietplan/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
)

func testConfig() *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{
			Enable:          true,
			RequestsPerMin:  60,
			BurstSize:       2,
			CleanupInterval: time.Minute,
		},
	}
}

func newRouter(t *testing.T, cfg *config.Config, extra ...gin.HandlerFunc) (*gin.Engine, *Middleware) {
	gin.SetMode(gin.TestMode)
	m := New(cfg, zaptest.NewLogger(t))
	r := gin.New()
	r.Use(m.RequestID(), m.ErrorHandler(), m.Recovery())
	r.Use(extra...)
	return r, m
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorDetails {
	t.Helper()
	var body struct {
		Success bool                `json:"success"`
		Error   errors.ErrorDetails `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestRequestID_ShouldKeepIncomingAndGenerateMissing(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Body.String(), 36)
}

func TestRecovery_Panic_ShouldRenderInternalError(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	details := decodeError(t, rec)
	assert.Equal(t, errors.CodeInternal, details.Code)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), details.RequestID)
}

func TestRateLimit_ShouldRejectAfterBurst(t *testing.T) {
	r, m := newRouter(t, testConfig())
	r.Use(m.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, errors.CodeTooManyRequests, decodeError(t, rec).Code)
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// other clients have their own bucket
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_Disabled_ShouldPassEverything(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enable = false
	r, m := newRouter(t, cfg)
	r.Use(m.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestTimeout_SlowHandler_ShouldRenderTimeout(t *testing.T) {
	r, m := newRouter(t, testConfig())
	r.Use(m.Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, errors.CodeTimeout, decodeError(t, rec).Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIPLimiters_ShouldForgetIdleClients(t *testing.T) {
	l := newIPLimiters(rate.Limit(1), 1, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("b", now.Add(30*time.Second)))
	assert.Equal(t, 2, l.size())

	// "a" has been idle for more than a minute when the sweep runs
	assert.True(t, l.allow("c", now.Add(90*time.Second)))
	assert.Equal(t, 2, l.size())
}

func TestIPLimiters_ShouldRefillOverTime(t *testing.T) {
	l := newIPLimiters(rate.Limit(1), 1, time.Hour)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now.Add(100*time.Millisecond)))
	assert.True(t, l.allow("a", now.Add(1100*time.Millisecond)))
}

func compressConfig() *config.Config {
	cfg := testConfig()
	cfg.Server.Compression = config.CompressionConfig{Enabled: true, MinSize: 64, BrotliLevel: 5, GzipLevel: 6}
	return cfg
}

func TestCompress_ShouldNegotiateEncoding(t *testing.T) {
	payload := strings.Repeat("小米粥 山药 红枣 ", 50)
	cases := []struct {
		name   string
		accept string
		want   string
	}{
		{"PreferBrotli", "gzip, br", "br"},
		{"GzipOnly", "gzip", "gzip"},
		{"BrotliRefused", "br;q=0, gzip;q=0.5", "gzip"},
		{"Identity", "identity", ""},
		{"NoHeader", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newRouter(t, compressConfig())
			r.Use(m.Compress())
			r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"text": payload}) })

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.accept != "" {
				req.Header.Set("Accept-Encoding", tc.accept)
			}
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, rec.Header().Get("Content-Encoding"))

			var reader io.Reader = rec.Body
			switch tc.want {
			case "br":
				reader = brotli.NewReader(rec.Body)
			case "gzip":
				gz, err := gzip.NewReader(rec.Body)
				require.NoError(t, err)
				reader = gz
			}
			var body struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.NewDecoder(reader).Decode(&body))
			assert.Equal(t, payload, body.Text)
		})
	}
}

func TestCompress_SmallBody_ShouldPassThrough(t *testing.T) {
	r, m := newRouter(t, compressConfig())
	r.Use(m.Compress())
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	r.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCompress_ErrorEnvelope_ShouldRenderOnce(t *testing.T) {
	r, m := newRouter(t, compressConfig())
	r.Use(m.Compress())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errors.CodeInternal, decodeError(t, rec).Code)
}

func TestSecurity_ShouldSetHeaders(t *testing.T) {
	r, m := newRouter(t, testConfig())
	r.Use(m.Security())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestBodyLimit_ShouldCapReads(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodyBytes = 16
	r, m := newRouter(t, cfg)
	r.Use(m.BodyLimit())
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
