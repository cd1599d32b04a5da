package config

import (
	"reflect"
	"strings"

	"cardvault/core/database"
	"cardvault/core/logger"
	"cardvault/core/server"
	"cardvault/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage used as a bulk
	// catalog source (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the embedded store.
	Database database.Config `mapstructure:"database"`
	// Catalog holds configuration for catalog ingestion and reconciliation.
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// CatalogConfig holds tunables for the ingestion worker and the
// reconciliation engine.
type CatalogConfig struct {
	// BatchSize is the number of catalog records written per transaction
	// during ingestion. Bounds peak resident records.
	BatchSize int `mapstructure:"batch_size" default:"1000"`
	// EnglishOnly skips non-English records during ingestion.
	EnglishOnly bool `mapstructure:"english_only" default:"false"`
	// ReadTimeoutSeconds bounds each read phase of a reconcile run.
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds" default:"30"`
	// BulkObject is the object name of the bulk catalog file in storage.
	BulkObject string `mapstructure:"bulk_object" default:"bulk/all-cards.json"`
	// PromoObject is the object name of the promotional/token catalog file.
	PromoObject string `mapstructure:"promo_object" default:"bulk/promo-cards.json"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
