// Package ops implements the gyn-ops command line: schema verification,
// seed users, source audits and health waits against a running instance.
//
// Every command exits non-zero (returns an error) when any part of its work
// failed, so it can gate deploy scripts.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/growyourneed/platform/internal/backend"
	"github.com/growyourneed/platform/internal/catalog"
	"github.com/growyourneed/platform/internal/config"
	"github.com/growyourneed/platform/internal/ensure"
	"github.com/growyourneed/platform/internal/health"
	"github.com/growyourneed/platform/internal/pbclient"
	"github.com/growyourneed/platform/internal/provision"
	"github.com/growyourneed/platform/internal/reconcile"
	"github.com/growyourneed/platform/internal/schema"
)

var (
	// ErrFailed is returned when a command completed with failures.
	ErrFailed = errors.New("one or more operations failed")
	// ErrMissing is returned when expected collections are missing.
	ErrMissing = errors.New("expected collections are missing")
)

type runner struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the gyn-ops command tree.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	r := &runner{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:           "gyn-ops",
		Short:         "Operational tooling for a Grow Your Need PocketBase instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.PocketBase.URL, "url", cfg.PocketBase.URL, "PocketBase base URL")

	root.AddCommand(
		r.waitHealthyCmd(),
		r.verifyCollectionsCmd(),
		r.seedUsersCmd(),
		r.auditCollectionsCmd(),
		r.exportSchemaCmd(),
	)
	return root
}

func (r *runner) client() *pbclient.Client {
	return pbclient.New(r.cfg.PocketBase.URL, pbclient.WithLogger(r.logger))
}

// adminClient waits for the instance and authenticates as superuser. An
// instance that never reports healthy is only a warning; authentication
// decides whether the command can go on.
func (r *runner) adminClient(ctx context.Context) (*pbclient.Client, error) {
	if err := r.cfg.RequireAdmin(); err != nil {
		return nil, err
	}
	c := r.client()
	if _, err := health.Wait(ctx, c, r.policy(), r.logger); err != nil {
		if !errors.Is(err, health.ErrUnhealthy) || ctx.Err() != nil {
			return nil, err
		}
		r.logger.Warn().Err(err).Msg("instance not healthy, continuing degraded")
	}
	if err := c.AuthSuperuser(ctx, r.cfg.PocketBase.AdminEmail, r.cfg.PocketBase.AdminPassword); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *runner) policy() health.Policy {
	return health.Policy{Attempts: r.cfg.HealthRetries, Delay: r.cfg.HealthDelay}
}

func (r *runner) waitHealthyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait-healthy",
		Short: "Wait until the instance answers /api/health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			attempts, err := health.Wait(cmd.Context(), r.client(), r.policy(), r.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "healthy after %d attempt(s)\n", attempts)
			return nil
		},
	}
}

func (r *runner) verifyCollectionsCmd() *cobra.Command {
	var create, full bool
	cmd := &cobra.Command{
		Use:   "verify-collections",
		Short: "Report expected collections that are missing, optionally creating them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := r.adminClient(ctx)
			if err != nil {
				return err
			}

			rec := backend.NewReconciler(backend.NewRemote(c), r.logger)
			if !full {
				rec.Define = catalog.FallbackFor
			}

			out := cmd.OutOrStdout()
			if !create {
				rep, err := rec.Diff(ctx)
				if err != nil {
					return err
				}
				printReport(out, rep)
				if len(rep.Missing) > 0 {
					return fmt.Errorf("%w: %s", ErrMissing, strings.Join(rep.Missing, ", "))
				}
				return nil
			}

			rep, res, err := rec.Apply(ctx)
			if err != nil {
				return err
			}
			printReport(out, rep)
			printResult(out, "collections", res)
			if !res.OK() {
				return fmt.Errorf("%w: %w", ErrFailed, res.Err())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create missing collections")
	cmd.Flags().BoolVar(&full, "full", false, "create with full catalog definitions instead of the fallback schema")
	return cmd
}

func (r *runner) seedUsersCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create the default role users if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = r.cfg.SeedPassword
			}
			if password == "" {
				return errors.New("seed password is required (--password or SEED_USER_PASSWORD)")
			}

			ctx := cmd.Context()
			c, err := r.adminClient(ctx)
			if err != nil {
				return err
			}

			res := provision.Seed(ctx, backend.NewRemote(c), provision.DefaultUsers(password), r.logger)
			printResult(cmd.OutOrStdout(), "users", res)
			if !res.OK() {
				return fmt.Errorf("%w: %w", ErrFailed, res.Err())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for every seeded user")
	return cmd
}

func (r *runner) auditCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-collections <dir>",
		Short: "Check that every expected collection is declared in the sources under dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := reconcile.AuditSources(args[0], catalog.Expected())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range catalog.Expected() {
				if files, ok := rep.Present[name]; ok {
					fmt.Fprintf(out, "  ok       %s (%s)\n", name, strings.Join(files, ", "))
				}
			}
			for _, name := range rep.Missing {
				fmt.Fprintf(out, "  missing  %s\n", name)
			}
			if len(rep.Missing) > 0 {
				return fmt.Errorf("%w: %s", ErrMissing, strings.Join(rep.Missing, ", "))
			}
			return nil
		},
	}
}

func (r *runner) exportSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-schema",
		Short: "Print the catalog as PocketBase collection payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payloads := make([]map[string]any, 0, len(catalog.All()))
			for _, def := range catalog.All() {
				// relation targets are exported by name
				p, err := schema.Payload(def, func(name string) (string, error) { return name, nil })
				if err != nil {
					return err
				}
				payloads = append(payloads, p)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payloads)
		},
	}
}

func printReport(out io.Writer, rep reconcile.Report) {
	fmt.Fprintf(out, "expected %d, present %d, missing %d\n", len(rep.Expected), len(rep.Present), len(rep.Missing))
	for _, name := range rep.Missing {
		fmt.Fprintf(out, "  missing  %s\n", name)
	}
}

func printResult(out io.Writer, what string, res ensure.Result) {
	fmt.Fprintf(out, "%s: %d created, %d skipped, %d failed\n", what, len(res.Created), len(res.Skipped), len(res.Failed))
	for _, f := range res.Failed {
		fmt.Fprintf(out, "  failed   %s: %v\n", f.Key, f.Err)
	}
}
