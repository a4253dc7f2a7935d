package storage

import (
	"fmt"

	"github.com/kal997/file-interest-server/internal/config"
)

// New opens the store selected by the configuration
func New(cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.GetStoreBackend() {
	case config.StoreBackendDisk:
		var ds *DiskStore
		if ds, err = NewDiskStore(cfg.GetStoreDir()); err == nil {
			store = ds
		}
	case config.StoreBackendBolt:
		var bs *BoltStore
		if bs, err = NewBoltStore(cfg.GetBoltPath()); err == nil {
			store = bs
		}
	case config.StoreBackendRedis:
		var rs *RedisStore
		if rs, err = NewRedisStore(cfg); err == nil {
			store = rs
		}
	default:
		err = fmt.Errorf("unsupported store backend: %s", cfg.GetStoreBackend())
	}

	if err != nil {
		return nil, err
	}
	return store, nil
}
