// Package database provides SQLite-based storage for completed run
// reports, enabling `lodprobe history` to list past provider
// estimates. Only finished runs are persisted; no intermediate
// sampling state touches disk.
package database
