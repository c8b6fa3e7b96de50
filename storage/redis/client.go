// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/filetao/storage"
)

var (
	// Error is a redis error.
	Error = errs.Class("redis")

	mon = monkit.Package()
)

const (
	fieldValue   = "value"
	fieldExpires = "expires"
)

// Client is the entrypoint into Redis.
//
// Every entry is stored as a hash with a "value" field and an optional
// "expires" field holding unix nanoseconds. Redis native key expiry is never
// used.
type Client struct {
	db *redis.Client

	// Now returns the current time used to evaluate expiration.
	Now func() time.Time
}

// OpenClient returns a configured Client instance, verifying a successful connection to redis.
func OpenClient(ctx context.Context, address, password string, db int) (*Client, error) {
	client := &Client{
		db: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		Now: time.Now,
	}

	// ping here to verify we are able to connect to redis with the initialized client.
	if err := client.db.Ping(ctx).Err(); err != nil {
		return nil, errs.Combine(Error.New("ping failed: %v", err), client.db.Close())
	}

	return client, nil
}

// OpenClientFrom returns a configured Client instance from a redis address, verifying a successful connection to redis.
//
// The address has the form redis://host:port?db=N&password=P. db defaults to 0.
func OpenClientFrom(ctx context.Context, address string) (*Client, error) {
	redisurl, err := url.Parse(address)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if redisurl.Scheme != "redis" {
		return nil, Error.New("not a redis:// formatted address")
	}

	q := redisurl.Query()

	db := 0
	if s := q.Get("db"); s != "" {
		db, err = strconv.Atoi(s)
		if err != nil {
			return nil, Error.New("invalid db %q: %v", s, err)
		}
	}

	return OpenClient(ctx, redisurl.Host, q.Get("password"), db)
}

// Ping checks that the server is reachable.
func (client *Client) Ping(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	if err := client.db.Ping(ctx).Err(); err != nil {
		return Error.New("ping failed: %v", err)
	}
	return nil
}

// ConfigGet returns the server configuration values matching parameter.
func (client *Client) ConfigGet(ctx context.Context, parameter string) (_ map[string]string, err error) {
	defer mon.Task()(&ctx)(&err)
	values, err := client.db.ConfigGet(ctx, parameter).Result()
	if err != nil {
		return nil, Error.New("config get %q: %v", parameter, err)
	}
	return values, nil
}

// Get looks up the provided key from redis returning either an error or the result.
func (client *Client) Get(ctx context.Context, key storage.Key) (_ storage.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, storage.ErrEmptyKey.New("")
	}

	value, expires, err := get(ctx, client.db, key)
	if err != nil {
		return nil, err
	}
	if storage.Expired(expires, client.Now()) {
		return nil, storage.ErrKeyNotFound.New("%q", key)
	}
	return value, nil
}

// Put adds a value to the provided key in redis, returning an error on failure.
func (client *Client) Put(ctx context.Context, key storage.Key, value storage.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return put(ctx, client.db, key, value, storage.ExpiresAt(client.Now(), ttl))
}

// Delete deletes a key/value pair from redis, for a given the key.
func (client *Client) Delete(ctx context.Context, key storage.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return delete(ctx, client.db, key)
}

// Expiration returns when key expires, or the zero time if it never does.
func (client *Client) Expiration(ctx context.Context, key storage.Key) (_ time.Time, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return time.Time{}, storage.ErrEmptyKey.New("")
	}
	_, expires, err := get(ctx, client.db, key)
	return expires, err
}

// Expire sets the expiration of an existing key. A zero at clears it.
func (client *Client) Expire(ctx context.Context, key storage.Key, at time.Time) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	exists, err := client.db.HExists(ctx, key.String(), fieldValue).Result()
	if err != nil {
		return Error.New("expire error: %v", err)
	}
	if !exists {
		return storage.ErrKeyNotFound.New("%q", key)
	}

	if at.IsZero() {
		err = client.db.HDel(ctx, key.String(), fieldExpires).Err()
	} else {
		err = client.db.HSet(ctx, key.String(), fieldExpires, storage.UnixNano(at)).Err()
	}
	if err != nil {
		return Error.New("expire error: %v", err)
	}
	return nil
}

// FlushDB deletes all keys in the currently selected DB.
func (client *Client) FlushDB(ctx context.Context) error {
	_, err := client.db.FlushDB(ctx).Result()
	return Error.Wrap(err)
}

// Close closes a redis client.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}

// Range iterates over all items in unspecified order.
//
// Keys that are not hashes were not written by this client and are skipped.
// An unreadable expires field is reported as no expiration.
func (client *Client) Range(ctx context.Context, fn func(context.Context, storage.Item) error) (err error) {
	defer mon.Task()(&ctx)(&err)

	it := client.db.Scan(ctx, 0, "", 0).Iterator()

	var lastKey string
	var lastOk bool
	for it.Next(ctx) {
		key := it.Val()
		// redis may return duplicates
		if lastOk && key == lastKey {
			continue
		}
		lastKey, lastOk = key, true

		kind, err := client.db.Type(ctx, key).Result()
		if err != nil {
			return Error.Wrap(err)
		}
		if kind != "hash" {
			continue
		}

		raw, err := client.db.HGet(ctx, key, fieldExpires).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return Error.Wrap(err)
		}

		var expires time.Time
		if ns, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			expires = storage.FromUnixNano(ns)
		}

		if err := fn(ctx, storage.Item{Key: storage.Key(key), Expires: expires}); err != nil {
			return err
		}
	}

	return Error.Wrap(it.Err())
}

func get(ctx context.Context, cmdable redis.Cmdable, key storage.Key) (_ storage.Value, expires time.Time, err error) {
	defer mon.Task()(&ctx)(&err)
	fields, err := cmdable.HMGet(ctx, key.String(), fieldValue, fieldExpires).Result()
	if err != nil {
		return nil, time.Time{}, Error.New("get error: %v", err)
	}
	if len(fields) != 2 || fields[0] == nil {
		return nil, time.Time{}, storage.ErrKeyNotFound.New("%q", key)
	}

	value, ok := fields[0].(string)
	if !ok {
		return nil, time.Time{}, Error.New("get error: unexpected value type %T", fields[0])
	}

	if raw, ok := fields[1].(string); ok && raw != "" {
		ns, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, time.Time{}, Error.New("get error: invalid expires %q", raw)
		}
		expires = storage.FromUnixNano(ns)
	}

	return storage.Value(value), expires, nil
}

func put(ctx context.Context, cmdable redis.Cmdable, key storage.Key, value storage.Value, expires time.Time) (err error) {
	defer mon.Task()(&ctx)(&err)
	_, err = cmdable.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key.String())
		if expires.IsZero() {
			pipe.HSet(ctx, key.String(), fieldValue, []byte(value))
		} else {
			pipe.HSet(ctx, key.String(), fieldValue, []byte(value), fieldExpires, storage.UnixNano(expires))
		}
		return nil
	})
	if err != nil {
		return Error.New("put error: %v", err)
	}
	return nil
}

func delete(ctx context.Context, cmdable redis.Cmdable, key storage.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	err = cmdable.Del(ctx, key.String()).Err()
	if err != nil {
		return Error.New("delete error: %v", err)
	}
	return nil
}
