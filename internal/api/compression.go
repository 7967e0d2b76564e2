package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// decompressMiddleware handles decompression of request bodies based on Content-Encoding header
// Supports: zstd
// Falls back to uncompressed if no Content-Encoding header (backward compatible)
func decompressMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := r.Header.Get("Content-Encoding")

			// No compression, pass through
			if encoding == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Handle zstd compression
			if strings.EqualFold(encoding, "zstd") {
				decoder, err := zstd.NewReader(r.Body)
				if err != nil {
					respondError(w, http.StatusBadRequest, "Failed to create zstd decoder")
					return
				}
				defer decoder.Close()

				// Replace request body with decompressed reader
				r.Body = io.NopCloser(decoder)

				// Remove Content-Encoding header so downstream handlers see uncompressed data
				r.Header.Del("Content-Encoding")

				// Update Content-Length to unknown since decompressed size differs
				r.Header.Del("Content-Length")
				r.ContentLength = -1

				next.ServeHTTP(w, r)
				return
			}

			// Unsupported encoding
			respondError(w, http.StatusUnsupportedMediaType,
				"Unsupported Content-Encoding: "+encoding)
		})
	}
}

// compressMiddleware compresses JSON responses when the client advertises
// support. Preference order: zstd, then brotli. Dashboard payloads are
// large repetitive JSON and compress well.
func compressMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accepted := r.Header.Get("Accept-Encoding")

			switch {
			case acceptsEncoding(accepted, "zstd"):
				encoder, err := zstd.NewWriter(w)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				defer encoder.Close()

				w.Header().Set("Content-Encoding", "zstd")
				w.Header().Add("Vary", "Accept-Encoding")
				next.ServeHTTP(&compressedResponseWriter{ResponseWriter: w, writer: encoder}, r)

			case acceptsEncoding(accepted, "br"):
				encoder := brotli.NewWriter(w)
				defer encoder.Close()

				w.Header().Set("Content-Encoding", "br")
				w.Header().Add("Vary", "Accept-Encoding")
				next.ServeHTTP(&compressedResponseWriter{ResponseWriter: w, writer: encoder}, r)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// acceptsEncoding reports whether the Accept-Encoding header lists the
// given encoding. Quality values other than q=0 count as accepted.
func acceptsEncoding(header, encoding string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), encoding) {
			continue
		}
		if strings.Contains(strings.ReplaceAll(params, " ", ""), "q=0") &&
			!strings.Contains(strings.ReplaceAll(params, " ", ""), "q=0.") {
			return false
		}
		return true
	}
	return false
}

// compressedResponseWriter routes the body through the encoder while
// headers and status go straight to the underlying writer.
type compressedResponseWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (w *compressedResponseWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}
