// Package vault implements the local persistence engine for marketplace
// listings.
//
// It owns the durable keyed store with its two collections:
//  1. Listings: primary-key access by local id, unique lookup by the remote
//     external id, similarity scan, upsert, cascade delete, clear.
//  2. Image blobs: composite-key access by (listing, photo index).
//
// Every write executes inside a database transaction scoped to one logical
// unit. Deleting a listing removes its blobs in the same transaction, so no
// orphaned blob or dangling record is ever observable.
//
// # Components
//
//   - Store: transactional data access on top of GORM.
//   - Service: the operations UI adapters call (list, delete, unpublish,
//     field edit, reset). Adapters never touch the store directly.
//   - Handler: the HTTP surface for those operations.
//
// # Publication state
//
// A listing starts published. Unpublish moves it to unpublished, stamps the
// deletion date and fires a best-effort delete on the remote marketplace.
// There is no transition back; republish is a declared future capability.
package vault
