// Package store opens the configured comment backend.
package store

import (
	"context"
	"fmt"

	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/db/pebbledb"
	"github.com/PeterCxy/itte/pkg/store/db/redisdb"
	"github.com/PeterCxy/itte/pkg/store/db/s3db"
)

// Open returns the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (db.Backend, error) {
	st := cfg.Storage
	switch st.Backend {
	case config.BackendPebble, "":
		return opened(pebbledb.Open(cfg.Server.DBPath))
	case config.BackendMemory:
		return opened(pebbledb.OpenMemory())
	case config.BackendRedis:
		return opened(redisdb.Open(ctx, st.Redis.URL, st.Redis.IndexKey))
	case config.BackendS3:
		return opened(s3db.Open(ctx, s3db.Options{
			Endpoint:     st.S3.Endpoint,
			AccessKey:    st.S3.AccessKey,
			SecretKey:    st.S3.SecretKey,
			Bucket:       st.S3.Bucket,
			Region:       st.S3.Region,
			Prefix:       st.S3.Prefix,
			UseSSL:       st.S3.UseSSL,
			CreateBucket: st.S3.CreateBucket,
		}))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", st.Backend)
	}
}

// opened keeps a failed open from returning a typed nil inside the interface.
func opened[B db.Backend](b B, err error) (db.Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Ready reports whether b can serve requests. Backends without a readiness
// probe are assumed ready.
func Ready(b db.Backend) bool {
	if b == nil {
		return false
	}
	if r, ok := b.(interface{ Ready() bool }); ok {
		return r.Ready()
	}
	return true
}
