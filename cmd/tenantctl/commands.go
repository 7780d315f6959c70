package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/config"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
	"github.com/dmitrymomot/tenantguard/svc/store"
)

var errMissingFlag = errors.New("missing required flag")

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func required(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: --%s", errMissingFlag, name)
	}
	return nil
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	if err := newFlagSet("migrate", out).Parse(args); err != nil {
		return err
	}
	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	pool, err := d.db.Pool(ctx)
	if err != nil {
		return err
	}
	if err := pg.Migrate(ctx, pool, d.cfg.PG, d.log); err != nil {
		return err
	}
	fmt.Fprintln(out, "migrations applied")
	return nil
}

func runCreateTenant(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("create-tenant", out)
	name := fs.String("name", "", "display name (required)")
	slugFlag := fs.String("slug", "", "URL slug, derived from the name when empty")
	subdomain := fs.String("subdomain", "", "optional subdomain alias")
	inactive := fs.Bool("inactive", false, "create the tenant deactivated")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("name", *name); err != nil {
		return err
	}

	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	active := !*inactive
	t, err := d.store.CreateTenant(ctx, store.NewTenant{
		Name: *name, Slug: *slugFlag, Subdomain: *subdomain, Active: &active,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created tenant %s (%s)\n", t.Slug, t.ID)
	return nil
}

func runDeactivate(ctx context.Context, args []string, out io.Writer) error {
	return setActive(ctx, "deactivate", args, out, false)
}

func runActivate(ctx context.Context, args []string, out io.Writer) error {
	return setActive(ctx, "activate", args, out, true)
}

func setActive(ctx context.Context, name string, args []string, out io.Writer, active bool) error {
	fs := newFlagSet(name, out)
	slugFlag := fs.String("slug", "", "tenant slug (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("slug", *slugFlag); err != nil {
		return err
	}

	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := d.store.SetTenantActive(ctx, *slugFlag, active)
	if err != nil {
		return err
	}
	if err := d.invalidate(ctx, t); err != nil {
		return fmt.Errorf("tenant updated but cache invalidation failed: %w", err)
	}
	fmt.Fprintf(out, "%sd tenant %s\n", name, t.Slug)
	return nil
}

func runAddMember(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("add-member", out)
	user := fs.String("user", "", "user id (required)")
	slugFlag := fs.String("slug", "", "tenant slug (required)")
	admin := fs.Bool("admin", false, "grant the tenant admin flag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := errors.Join(required("user", *user), required("slug", *slugFlag)); err != nil {
		return err
	}

	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := d.store.FindActive(ctx, *slugFlag)
	if err != nil {
		return err
	}
	if err := d.store.AddMembership(ctx, access.Membership{UserID: *user, TenantID: t.ID, IsAdmin: *admin}); err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s to %s\n", *user, t.Slug)
	return nil
}

func runList(ctx context.Context, args []string, out io.Writer) error {
	if err := newFlagSet("list", out).Parse(args); err != nil {
		return err
	}
	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	tenants, err := d.store.ListTenants(ctx)
	if err != nil {
		return err
	}
	return printTenants(out, tenants)
}

func printTenants(out io.Writer, tenants []tenant.Tenant) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tSUBDOMAIN\tNAME\tACTIVE")
	for _, t := range tenants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", t.ID, t.Slug, t.Subdomain, t.Name, t.Active)
	}
	return w.Flush()
}

func runToken(_ context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("token", out)
	user := fs.String("user", "", "subject user id (required)")
	role := fs.String("role", string(auth.RoleStudent), "student, usuario or superadmin")
	empresa := fs.String("empresa", "", "tenant id claim")
	metadata := fs.String("metadata-empresa", "", "tenant id cached in session metadata")
	admin := fs.Bool("admin", false, "tenant admin claim")
	ttl := fs.Duration("ttl", 0, "token lifetime, AUTH_TOKEN_TTL when zero")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("user", *user); err != nil {
		return err
	}

	cfg, err := config.Load[auth.Config](config.WithOptionalEnvFiles(".env"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	issuer, err := auth.NewTokenIssuer(cfg)
	if err != nil {
		return err
	}
	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	tok, err := issuer.Issue(auth.User{
		ID:               *user,
		Role:             auth.Role(*role),
		TenantID:         *empresa,
		IsTenantAdmin:    *admin,
		MetadataTenantID: *metadata,
	}, lifetime)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	return nil
}
