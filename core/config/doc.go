// Package config provides the application configuration loading system.
//
// Configuration is assembled from partial configs owned by the packages they
// describe (server, storage, log, database, marketplace, archive). Values are
// resolved from environment variables (optionally via a .env file) with
// defaults taken from `default:` struct tags.
//
// # Environment Mapping
//
// Nested keys map to underscore-joined environment variables:
//
//	server.port        -> SERVER_PORT
//	database.path      -> DATABASE_PATH
//	marketplace.user_id -> MARKETPLACE_USER_ID
package config
