// Package pg connects to PostgreSQL with pgx/v5 and owns the schema.
//
// Config is read from the environment (PG_CONN_URL and friends). Connect
// opens a pool with retry; Provider wraps it so the pool is created on
// first use and can be reset between tests:
//
//	cfg := config.MustLoad[pg.Config]()
//	db := pg.NewProvider(cfg)
//	defer db.Close()
//
//	pool, err := db.Pool(ctx)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// Migrations are embedded goose SQL files creating the empresas,
// usuarios_empresas and audit_events tables.
//
// Healthcheck returns a readiness probe; IsNotFoundError and
// IsDuplicateKeyError classify query errors.
package pg
