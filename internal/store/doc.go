// Package store defines the persistence contracts for tasks. Implementations
// live under internal/platform; callers depend only on these interfaces, so a
// worker can hold a PostgreSQL connection or an in-memory store without
// knowing which.
package store
