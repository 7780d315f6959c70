// Package httpserver runs an http.Server bound to a context.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithCloser("postgres", func(context.Context) error { db.Close(); return nil }),
//	)
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run listens before returning control to the accept loop, so a bad
// address fails fast with ErrStart. Cancelling ctx triggers a graceful
// shutdown bounded by the shutdown timeout, after which closers run in
// reverse registration order.
//
// Liveness and Readiness are probe handlers answering with small JSON
// documents.
package httpserver
