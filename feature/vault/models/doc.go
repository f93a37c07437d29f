// Package models defines the persisted data model of the vault: the listing
// record and its image blobs.
package models
