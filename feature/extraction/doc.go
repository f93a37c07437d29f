// Package extraction implements the remote synchronization half of the
// vault: fetching the account's listings from the marketplace and folding
// them into local storage.
//
// # Components
//
//   - Client: authenticated HTTP access to the marketplace API (paginated
//     listings, image downloads, remote deletion).
//   - Reconciler: the create-or-merge decision per incoming item, matching
//     first by external id and then by an exact (title, price, description)
//     equality scan.
//   - ImageFetcher: best-effort download and persistence of listing photos.
//   - Service: the extraction run loop tying the three together.
//
// # Failure policy
//
// Missing credentials are fatal and abort the run before any fetch. Every
// other failure is recoverable and scoped: a failed page is skipped and the
// pagination advances, a failed item is skipped and the next item is
// processed, a failed image is skipped and the listing still counts as
// processed. Nothing is retried.
package extraction
