// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql with the pgx driver. It owns the SQL, the JSONB
// encoding of embedded cards, profile prompts and task payloads, and the
// mapping from driver errors to the store error taxonomy. The goose
// migration files under migrations/ define the schema these stores expect.
package postgres
