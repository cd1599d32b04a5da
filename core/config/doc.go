// Package config provides centralized application configuration.
//
// Configuration is assembled from three layers, in order of precedence:
//  1. Environment variables (e.g. DATABASE_PATH, CATALOG_BATCH_SIZE)
//  2. A .env file in the working directory, loaded via godotenv
//  3. Defaults declared as `default:"..."` struct tags
//
// Nested keys map to environment variables by replacing dots with
// underscores: server.port becomes SERVER_PORT.
package config
