//go:build !cgo_sqlite

package ledger

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"
)
