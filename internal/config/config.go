// Package config loads runtime configuration from environment variables.
// Each service binary calls Load with its own defaults; a .env file, when
// present, is read by main before Load runs.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings shared by the service binaries. Not
// every service uses every field; the shared shape keeps the loading
// path identical across binaries.
type Config struct {
	Env  string // application environment (dev/test/prod)
	Port string // HTTP port to listen on

	MongoURL string // Mongo connection string
	DBName   string // database name for this service

	OrderServiceURL     string // base URL of the order service
	TableBillServiceURL string // base URL of the table/bill service
	MenuServiceURL      string // base URL of the menu service

	SyncEnabled  bool          // run the background bill sync
	SyncInterval time.Duration // bill sync cycle interval

	WebhookURL   string // external webhook listener, empty disables the relay
	OutboxBuffer int    // outbound notification queue size
}

// Load reads the configuration, falling back to the given port and
// database name when the environment does not override them.
func Load(defaultPort, defaultDB string) Config {
	return Config{
		Env:                 getenv("APP_ENV", "dev"),
		Port:                getenv("APP_PORT", defaultPort),
		MongoURL:            getenv("MONGODB_URL", "mongodb://localhost:27017"),
		DBName:              getenv("DATABASE_NAME", defaultDB),
		OrderServiceURL:     getenv("ORDER_SERVICE_URL", "http://localhost:8001"),
		TableBillServiceURL: getenv("TABLE_BILL_SERVICE_URL", "http://localhost:8002"),
		MenuServiceURL:      getenv("MENU_SERVICE_URL", "http://localhost:8003"),
		SyncEnabled:         getenv("SYNC_ENABLED", "true") == "true",
		SyncInterval:        parseDur(getenv("SYNC_INTERVAL", "60s")),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		OutboxBuffer:        atoi(getenv("OUTBOX_BUFFER", "64")),
	}
}

// getenv returns the value of key or def when unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
