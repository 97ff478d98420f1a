package config

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/paygo/internal/rates"
)

// OpenResolver builds the rate resolver described by the settings, wrapped with the
// configured timeout and cache. The returned close function is never nil.
func (s RatesSettings) OpenResolver(ctx context.Context) (rates.Resolver, func(), error) {
	var (
		resolver rates.Resolver
		closeFn  = func() {}
	)

	switch s.Source {
	case SourceBuiltin, "":
		resolver = rates.DefaultTable()
	case SourceFile:
		table, err := rates.LoadTableFromFile(s.File)
		if err != nil {
			return nil, nil, err
		}
		resolver = table
	case SourcePostgres:
		store, closer, err := rates.OpenPostgresStore(ctx, s.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		resolver, closeFn = store, closer
	case SourceMongo:
		store, closer, err := rates.OpenMongoStore(ctx, s.MongoURI, s.MongoDatabase, s.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		resolver, closeFn = store, closer
	default:
		return nil, nil, fmt.Errorf("unknown rates.source %q", s.Source)
	}

	resolver = rates.WithTimeout(resolver, s.ResolveTimeout)
	if s.Cache {
		resolver = rates.Memoize(resolver)
	}
	return resolver, closeFn, nil
}
