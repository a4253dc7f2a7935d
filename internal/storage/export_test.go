package storage

import (
	"go.etcd.io/bbolt"
)

// readRawBolt returns the stored (compressed) bytes for name
func readRawBolt(bs *BoltStore, name string) ([]byte, error) {
	var raw []byte
	err := bs.db.View(func(tx *bbolt.Tx) error {
		raw = append([]byte(nil), tx.Bucket(bucketFiles).Get([]byte(name))...)
		return nil
	})
	return raw, err
}
