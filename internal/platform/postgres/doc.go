// Package postgres provides PostgreSQL implementations of the store
// interfaces, along with the embedded goose migrations that define the
// schema they rely on.
package postgres
