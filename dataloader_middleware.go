package main

import (
	"database/sql"
	"net/http"
)

// DataLoaderMiddleware injects fresh dataloaders into the request context.
// Loaders are per-request so nothing is cached across calls.
func DataLoaderMiddleware(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithDataLoaders(r.Context(), NewDataLoaders(db))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
