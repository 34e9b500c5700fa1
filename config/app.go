package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName      string
	Port         string
	Env          string
	Debug        bool
	StoreTimeout time.Duration
	// Add more fields as needed
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:      os.Getenv("APP_NAME"),
			Port:         os.Getenv("PORT"),
			Env:          os.Getenv("APP_ENV"),
			Debug:        os.Getenv("DEBUG") == "true",
			StoreTimeout: storeTimeout(),
		}
	})
}

// storeTimeout reads STORE_TIMEOUT_MS. Every database round trip issued by the
// reconciliation service is bounded by this value; a timed-out call is treated
// like any other failed step.
func storeTimeout() time.Duration {
	if v := os.Getenv("STORE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 10 * time.Second
}
