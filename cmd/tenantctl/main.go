// Command tenantctl administers tenants, memberships and the schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}

type command struct {
	help string
	run  func(ctx context.Context, args []string, out io.Writer) error
}

var commands = map[string]command{
	"migrate":       {"Apply database migrations", runMigrate},
	"seed":          {"Load tenants and memberships from a YAML file", runSeed},
	"create-tenant": {"Create a tenant", runCreateTenant},
	"deactivate":    {"Deactivate a tenant and drop it from the shared cache", runDeactivate},
	"activate":      {"Reactivate a tenant", runActivate},
	"add-member":    {"Link a user to a tenant", runAddMember},
	"list":          {"List tenants", runList},
	"token":         {"Mint a development session token", runToken},
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printHelp(out)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printHelp(out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return cmd.run(ctx, args[1:], out)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage: tenantctl <command> [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		fmt.Fprintf(out, "  %-14s  %s\n", name, commands[name].help)
	}
	fmt.Fprint(out, `
Examples:
  tenantctl migrate
  tenantctl seed -f fixtures.yaml
  tenantctl create-tenant --name "Acme Escola" --slug acme --subdomain acme
  tenantctl deactivate --slug acme
  tenantctl add-member --user u1 --slug acme --admin
  tenantctl token --user u1 --role student --empresa <tenant-id>
`)
}
