package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/slug"
	"github.com/dmitrymomot/tenantguard/svc/store"
)

// fixtures is the seed file layout:
//
//	tenants:
//	  - name: Acme Escola
//	    slug: acme
//	    subdomain: acme
//	    members:
//	      - user: u1
//	        admin: true
type fixtures struct {
	Tenants []tenantFixture `yaml:"tenants"`
}

type tenantFixture struct {
	store.NewTenant `yaml:",inline"`
	Members         []memberFixture `yaml:"members"`
}

type memberFixture struct {
	User  string `yaml:"user"`
	Admin bool   `yaml:"admin"`
}

func parseFixtures(r io.Reader) (fixtures, error) {
	var f fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return f, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, t := range f.Tenants {
		if t.Name == "" {
			return f, fmt.Errorf("parse fixtures: tenant %d: %w", i, store.ErrInvalidName)
		}
		for _, m := range t.Members {
			if m.User == "" {
				return f, fmt.Errorf("parse fixtures: tenant %q: member without user", t.Name)
			}
		}
	}
	return f, nil
}

func runSeed(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("seed", out)
	file := fs.String("f", "", "fixtures YAML file (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("f", *file); err != nil {
		return err
	}

	fh, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer fh.Close()
	fx, err := parseFixtures(fh)
	if err != nil {
		return err
	}

	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	for _, tf := range fx.Tenants {
		t, err := d.store.CreateTenant(ctx, tf.NewTenant)
		switch {
		case errors.Is(err, store.ErrTenantExists):
			// Re-seeding keeps existing tenants and refreshes memberships.
			key := tf.Slug
			if key == "" {
				key = slug.Make(tf.Name)
			}
			if t, err = d.store.FindActive(ctx, key); err != nil {
				return fmt.Errorf("seed %q: %w", key, err)
			}
			fmt.Fprintf(out, "tenant %s exists\n", t.Slug)
		case err != nil:
			return fmt.Errorf("seed %q: %w", tf.Name, err)
		default:
			fmt.Fprintf(out, "created tenant %s (%s)\n", t.Slug, t.ID)
		}

		for _, m := range tf.Members {
			if err := d.store.AddMembership(ctx, access.Membership{UserID: m.User, TenantID: t.ID, IsAdmin: m.Admin}); err != nil {
				return fmt.Errorf("seed member %s of %s: %w", m.User, t.Slug, err)
			}
		}
	}
	return nil
}
