package kvcache

import (
	"context"

	"github.com/pkg/errors"
)

// Observed wraps a Cache and reports every successful write to a callback.
// It is the in-process equivalent of a storage mutation event.
type Observed struct {
	Cache
	onChange func(key string)
}

// Observe decorates c so that fn is called after each Set, Remove or CompareAndSet
func Observe(c Cache, fn func(key string)) *Observed {
	return &Observed{Cache: c, onChange: fn}
}

func (o *Observed) Set(ctx context.Context, key, value string) error {
	if err := o.Cache.Set(ctx, key, value); err != nil {
		return err
	}
	o.notify(key)
	return nil
}

func (o *Observed) Remove(ctx context.Context, key string) error {
	if err := o.Cache.Remove(ctx, key); err != nil {
		return err
	}
	o.notify(key)
	return nil
}

// Version delegates to the wrapped cache, reporting 0 when it keeps no versions
func (o *Observed) Version(ctx context.Context, key string) (uint64, error) {
	v, ok := o.Cache.(Versioned)
	if !ok {
		return 0, nil
	}
	return v.Version(ctx, key)
}

// CompareAndSet degrades to a plain Set when the wrapped cache keeps no versions
func (o *Observed) CompareAndSet(ctx context.Context, key string, version uint64, value string) (uint64, error) {
	v, ok := o.Cache.(Versioned)
	if !ok {
		if err := o.Set(ctx, key, value); err != nil {
			return 0, err
		}
		return 0, nil
	}
	next, err := v.CompareAndSet(ctx, key, version, value)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	o.notify(key)
	return next, nil
}

func (o *Observed) notify(key string) {
	if o.onChange != nil {
		o.onChange(key)
	}
}
