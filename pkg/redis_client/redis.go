package redis_client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/translink-train/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const maxPingRetries = 5

// Options reads the connection settings from the environment. The returned
// bool is false when no address has been configured.
func Options(env map[string]string) (*redis.Options, bool, error) {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	configured := env["TRANSLINK_REDIS_ADDRESS"] != ""
	if configured {
		address = env["TRANSLINK_REDIS_ADDRESS"]
	}

	if env["TRANSLINK_REDIS_PASSWORD"] != "" {
		password = env["TRANSLINK_REDIS_PASSWORD"]
	}

	if env["TRANSLINK_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRANSLINK_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return nil, configured, err
		}
	}

	return &redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	}, configured, nil
}

// Connect sets up Client. Without TRANSLINK_REDIS_ADDRESS it does nothing
// unless required is set, in which case the default address is used.
func Connect(ctx context.Context, required bool) error {
	options, configured, err := Options(util.GetEnvironmentVariables())
	if err != nil {
		return err
	}

	if !configured && !required {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}

	client := redis.NewClient(options)

	retryBackoff := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxPingRetries), ctx)

	err = backoff.RetryNotify(func() error {
		return client.Ping(ctx).Err()
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("retry_in", wait.String()).Msg("Redis ping failed")
	})
	if err != nil {
		client.Close()
		return fmt.Errorf("connecting to redis at %s: %w", options.Addr, err)
	}

	Client = client

	log.Info().Str("address", options.Addr).Int("database", options.DB).Msg("Connected to Redis")

	return nil
}

func Configured() bool {
	return Client != nil
}
