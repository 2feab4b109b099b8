// Package syncer drives Todoist collections into the local store.
//
// ARCHITECTURE:
//
// Each collection sync is one Run, an in-memory record that moves through
//
//	Idle → Fetching → Upserting → (Fetching | Done)
//
// Flat collections (tasks, projects) fetch once and write once. The
// completed-tasks collection is paginated: the driver requests a page,
// writes its items (and the projects it references) in one transaction,
// advances the cursor and pauses for the page delay before the next request.
//
// Termination:
// A page ends the loop when it has no items or carries no next cursor.
// An empty page writes nothing.
//
// Failure:
// A fetch or write error ends the run immediately. Pages written before the
// failure stay committed; every write is an idempotent upsert, so rerunning
// from the beginning converges to the same table contents.
//
// The driver is strictly sequential: one request in flight, one write
// transaction per page, and a blocking pause between pages.
package syncer
