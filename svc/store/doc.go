// Package store is the PostgreSQL system of record for tenants
// ("empresas"), memberships ("usuarios_empresas") and audit events.
//
// A single Store satisfies tenant.Store, access.MembershipStore and
// audit.Storage. It borrows its pool from a pg.Provider on every call, so
// constructing a Store never touches the database.
package store
