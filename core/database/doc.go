// Package database handles the vault database connection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly
// configure the local SQLite store (the default), or an optional MySQL backend
// for deployments that keep the vault on a shared server.
//
// # Connect
//
// The Connect function establishes the connection and returns a handle that is
// opened once at process start and passed by reference into every component.
// No component re-opens a connection per operation.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
