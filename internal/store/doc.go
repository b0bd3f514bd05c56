// Package store defines the persistence interfaces for the application's
// entities: users, decks, topics with their embedded cards, and background
// tasks. The interfaces, the DBTX seam, and the shared error taxonomy keep
// the service layer independent of the concrete database; the PostgreSQL
// implementations live in internal/platform/postgres.
package store
