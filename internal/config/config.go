// Package config loads runtime settings from the environment, optionally
// seeded from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultPinataAPIURL          = "https://api.pinata.cloud"
	DefaultPinataGatewayURL      = "https://gateway.pinata.cloud/ipfs"
	DefaultPinataRateLimit       = 3
	DefaultMaxImageSize          = 10 << 20
	DefaultCollectionName        = "Mintmarket"
	DefaultCollectionDescription = "Items without a collection of their own."
)

// Config holds settings that are not passed as flags.
type Config struct {
	PinataJWT        string
	PinataAPIURL     string
	PinataGatewayURL string
	PinataRateLimit  float64 // requests per second
	MaxImageSize     int64   // bytes

	DefaultCollectionName        string
	DefaultCollectionDescription string
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then builds the Config.
// A missing envFile is not an error; an empty envFile skips loading.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		PinataJWT:                    getenv("PINATA_JWT"),
		PinataAPIURL:                 orDefault(getenv("PINATA_API_URL"), DefaultPinataAPIURL),
		PinataGatewayURL:             orDefault(getenv("PINATA_GATEWAY_URL"), DefaultPinataGatewayURL),
		PinataRateLimit:              DefaultPinataRateLimit,
		MaxImageSize:                 DefaultMaxImageSize,
		DefaultCollectionName:        orDefault(getenv("DEFAULT_COLLECTION_NAME"), DefaultCollectionName),
		DefaultCollectionDescription: orDefault(getenv("DEFAULT_COLLECTION_DESCRIPTION"), DefaultCollectionDescription),
	}

	if v := getenv("PINATA_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid PINATA_RATE_LIMIT %q", v)
		}
		cfg.PinataRateLimit = limit
	}

	if v := getenv("MAX_IMAGE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid MAX_IMAGE_SIZE %q", v)
		}
		cfg.MaxImageSize = size
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
