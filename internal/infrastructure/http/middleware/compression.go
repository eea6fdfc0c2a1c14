package middleware

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

var compressibleTypes = []string{
	"application/json",
	"application/problem+json",
	"text/plain",
	"text/html",
	"application/yaml",
}

// bufferedWriter holds the body back until the chain finishes so the
// encoding can be chosen from the final size and content type.
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Written() bool {
	return w.buf.Len() > 0 || w.ResponseWriter.Written()
}

// Compress encodes responses with brotli or gzip when the client accepts it
// and the body is large enough to benefit
func (m *Middleware) Compress() gin.HandlerFunc {
	cfg := m.config.Server.Compression
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		original := c.Writer
		bw := &bufferedWriter{ResponseWriter: original}
		c.Writer = bw
		defer func() { c.Writer = original }()
		c.Next()
		c.Writer = original

		original.Header().Add("Vary", "Accept-Encoding")
		body := bw.buf.Bytes()
		if len(body) == 0 {
			return
		}
		if len(body) < cfg.MinSize || !isCompressible(original.Header().Get("Content-Type")) ||
			original.Header().Get("Content-Encoding") != "" {
			_, _ = original.Write(body)
			return
		}

		encoded, err := encode(encoding, body, cfg.BrotliLevel, cfg.GzipLevel)
		if err != nil {
			m.logger.Warn("Compression failed, sending identity body",
				zap.String("encoding", encoding),
				zap.Error(err),
			)
			_, _ = original.Write(body)
			return
		}

		original.Header().Set("Content-Encoding", encoding)
		original.Header().Del("Content-Length")
		_, _ = original.Write(encoded)
	}
}

// negotiateEncoding picks br over gzip; a q of zero rules a coding out
func negotiateEncoding(header string) string {
	if header == "" {
		return ""
	}
	accepted := make(map[string]float64)
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
		accepted[name] = q
	}

	for _, enc := range []string{encodingBrotli, encodingGzip} {
		if q, ok := accepted[enc]; ok && q > 0 {
			return enc
		}
	}
	if q, ok := accepted["*"]; ok && q > 0 {
		return encodingGzip
	}
	return ""
}

func isCompressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range compressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

func encode(encoding string, body []byte, brotliLevel, gzipLevel int) ([]byte, error) {
	var buf bytes.Buffer
	switch encoding {
	case encodingBrotli:
		w := brotli.NewWriterLevel(&buf, brotliLevel)
		if _, err := w.Write(body); err != nil {
			_ = w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		w, err := gzip.NewWriterLevel(&buf, gzipLevel)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			_ = w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
