package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"
)

// DataLoaderContextKey is the key used to store dataloaders in context
type DataLoaderContextKey string

const dataLoaderKey DataLoaderContextKey = "dataloader"

// DataLoaders holds the request-scoped batch loaders. Handlers that hydrate
// lists of profile ids go through ProfileLoader so duplicate ids within one
// request collapse into a single query.
type DataLoaders struct {
	ProfileLoader *dataloader.Loader[uuid.UUID, *Profile]
}

// NewDataLoaders creates new dataloaders with the database connection
func NewDataLoaders(db *sql.DB) *DataLoaders {
	return &DataLoaders{
		ProfileLoader: dataloader.NewBatchedLoader(profileBatchFn(db), dataloader.WithWait[uuid.UUID, *Profile](16*time.Millisecond)),
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey, dl)
}

// profileBatchFn loads a batch of profiles by id in a single query.
// Missing ids produce a nil result rather than an error, matching the
// engine's fail-open posture towards absent data.
func profileBatchFn(db *sql.DB) dataloader.BatchFunc[uuid.UUID, *Profile] {
	return func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[*Profile] {
		results := make([]*dataloader.Result[*Profile], len(keys))
		for i := range results {
			results[i] = &dataloader.Result[*Profile]{}
		}
		if len(keys) == 0 {
			return results
		}

		placeholders := make([]string, len(keys))
		args := make([]interface{}, len(keys))
		for i, key := range keys {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = key
		}

		query := fmt.Sprintf(
			"SELECT "+profileColumns+" FROM profiles p WHERE p.id IN (%s)",
			strings.Join(placeholders, ", "),
		)

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			for i := range results {
				results[i].Error = err
			}
			return results
		}
		defer rows.Close()

		byID := make(map[uuid.UUID]*Profile, len(keys))
		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				for i := range results {
					if results[i].Data == nil && results[i].Error == nil {
						results[i].Error = err
					}
				}
				return results
			}
			byID[p.ID] = p
		}

		for i, key := range keys {
			if p, ok := byID[key]; ok {
				results[i].Data = p
			}
		}
		return results
	}
}
