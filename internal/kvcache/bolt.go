package kvcache

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	valueBucket   = []byte("cache")
	versionBucket = []byte("version")
)

// Bolt is a Cache backed by a bbolt file
type Bolt struct {
	db *bolt.DB
}

var (
	_ Cache     = (*Bolt)(nil)
	_ Versioned = (*Bolt)(nil)
)

// OpenBolt opens or creates the cache file at path
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache dir for %s", path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open cache %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(valueBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(versionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init cache buckets")
	}
	zap.L().Info("kv cache opened", zap.String("path", path), zap.String("namespace", "kvcache"))
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(valueBucket).Get([]byte(key))
		if v != nil {
			// bytes are only valid inside the transaction
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "get %s", key)
	}
	return value, found, nil
}

func (b *Bolt) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(valueBucket).Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		_, err := bumpVersion(tx, key)
		return err
	})
	return errors.Wrapf(err, "set %s", key)
}

func (b *Bolt) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(valueBucket).Delete([]byte(key)); err != nil {
			return err
		}
		_, err := bumpVersion(tx, key)
		return err
	})
	return errors.Wrapf(err, "remove %s", key)
}

func (b *Bolt) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(valueBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, errors.Wrap(err, "list keys")
}

func (b *Bolt) Version(ctx context.Context, key string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var version uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		version = readVersion(tx, key)
		return nil
	})
	return version, errors.Wrapf(err, "version %s", key)
}

func (b *Bolt) CompareAndSet(ctx context.Context, key string, version uint64, value string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var next uint64
	err := b.db.Update(func(tx *bolt.Tx) error {
		if current := readVersion(tx, key); current != version {
			return domain.NewConflict(key, version, current)
		}
		if err := tx.Bucket(valueBucket).Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		var err error
		next, err = bumpVersion(tx, key)
		return err
	})
	if err != nil {
		return 0, errors.WithMessagef(err, "compare-and-set %s", key)
	}
	return next, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func readVersion(tx *bolt.Tx, key string) uint64 {
	v := tx.Bucket(versionBucket).Get([]byte(key))
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func bumpVersion(tx *bolt.Tx, key string) (uint64, error) {
	next := readVersion(tx, key) + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	return next, tx.Bucket(versionBucket).Put([]byte(key), buf)
}
