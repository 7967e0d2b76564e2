package api

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SpanEnricher is a middleware that enriches the current span with request
// metadata the dashboard queries carry: the date range and the optional
// user filter. Makes slow-range investigation possible from traces alone.
func SpanEnricher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if start := q.Get("startDate"); start != "" {
			span := trace.SpanFromContext(r.Context())
			span.SetAttributes(
				attribute.String("range.start", start),
				attribute.String("range.end", q.Get("endDate")),
			)
			if user := q.Get("user"); user != "" {
				span.SetAttributes(attribute.Bool("range.user_filtered", true))
			}
		}

		next.ServeHTTP(w, r)
	})
}
