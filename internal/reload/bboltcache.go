package reload

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// bboltBucket holds one key per source URL, value is the JSON-encoded
// SourceMeta — adapted from laplaque's anonymizer.bboltCache, which keys an
// embedded bbolt database by original PII value instead of source URL.
const bboltBucket = "reload_source_meta"

type bboltCache struct {
	db *bolt.DB
}

// NewBboltCache opens (or creates) a durable SourceMeta cache at path so
// conditional-GET state survives a process restart (§4.8 "durable
// reloader state").
func NewBboltCache(path string) (Cache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("reload: open bbolt cache %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bboltBucket))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("reload: create bbolt bucket: %w", err)
	}
	return &bboltCache{db: db}, nil
}

func (c *bboltCache) Get(key string) (*SourceMeta, bool) {
	var meta SourceMeta
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bboltBucket))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &meta); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return nil, false
	}
	return &meta, true
}

func (c *bboltCache) Set(key string, meta *SourceMeta) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	_ = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bboltBucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", bboltBucket)
		}
		return b.Put([]byte(key), raw)
	})
}

func (c *bboltCache) Close() error {
	return c.db.Close()
}
