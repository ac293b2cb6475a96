// Package edxappsvc picks the host platform backends from the configuration.
package edxappsvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	lmsedxapp "github.com/nelc/eoxnelp/services/edxapp/lms"
	memedxapp "github.com/nelc/eoxnelp/services/edxapp/memory"
	rediscontent "github.com/nelc/eoxnelp/services/edxapp/redisstore"
)

const (
	BackendMemory = "memory"
	BackendLMS    = "lms"

	ContentStoreBackend = "backend"
	ContentStoreRedis   = "redis"
)

// NewPlatform returns the configured platform and a function releasing its resources.
func NewPlatform(ctx context.Context, conf *core.Config, logger core.Logger) (edxapp.Platform, func() error, error) {
	var platform edxapp.Platform
	closer := func() error { return nil }

	switch conf.Edxapp.Backend {
	case BackendMemory, "":
		platform = memedxapp.New().Edxapp()
	case BackendLMS:
		platform = lmsedxapp.New(conf.Edxapp, logger).Edxapp()
	default:
		return platform, closer, errors.Errorf("unknown edxapp backend %q", conf.Edxapp.Backend)
	}

	switch conf.Edxapp.ContentStore {
	case ContentStoreBackend, "":
	case ContentStoreRedis:
		store := rediscontent.New(conf.Redis)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return platform, closer, errors.Wrap(err, "connecting to redis")
		}
		platform.ContentStore = store
		closer = store.Close
	default:
		return platform, closer, errors.Errorf("unknown edxapp content store %q", conf.Edxapp.ContentStore)
	}
	return platform, closer, nil
}
