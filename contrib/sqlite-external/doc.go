// Package sqliteexternal provides optional external SQLite drivers.
//
// It provides the CGO-based SQLite driver used by the wikiwsd store when
// preparing large dumps.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3):
//
//	import _ "github.com/FocuswithJustin/wikiwsd/contrib/sqlite-external"
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite
//
// # Default Pure Go Driver
//
// By default, wikiwsd uses modernc.org/sqlite, which requires no CGO.
// See github.com/FocuswithJustin/wikiwsd/core/sqlite for details.
//
// # When to Use
//
// Use this package when:
//   - Preparing a full dump, where insert throughput dominates
//   - You need specific SQLite extensions
//   - You already have CGO in your build pipeline
//
// Use the default pure Go driver when:
//   - Portability is important
//   - Cross-compilation is required
//   - You want simpler deployment (single binary)
package sqliteexternal
