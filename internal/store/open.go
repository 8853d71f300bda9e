package store

import (
	"fmt"

	"my-blog/internal/config"
)

// Open builds the Dialer for cfg.Driver. The returned close function
// releases anything held across sessions and is never nil.
func Open(cfg config.StoreConfig) (Dialer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMongo:
		return &MongoDialer{
			URI:            cfg.URI,
			Database:       cfg.Database,
			ConnectTimeout: cfg.ConnectTimeout,
		}, noop, nil
	case config.DriverRedis:
		return &RedisDialer{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}, noop, nil
	case config.DriverBadger:
		st, err := OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
