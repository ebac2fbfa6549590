package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/backend"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/identity"
	"inkwell/internal/models"
)

// commandTimeout bounds every operator command.
const commandTimeout = 2 * time.Minute

// openFunc opens the store a command works against.
type openFunc func(ctx context.Context) (*backend.Backend, *config.Config, error)

// newRootCmd creates the root command with all subcommands.
func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "inkwellctl",
		Short:        "Operate an inkwell deployment",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd(open))
	root.AddCommand(newSeedCmd(open))
	root.AddCommand(newUserCmd(open))
	root.AddCommand(newTokenCmd(open))
	return root
}

// withBackend runs fn against an open store and closes it afterwards.
func withBackend(cmd *cobra.Command, open openFunc, fn func(ctx context.Context, be *backend.Backend, cfg *config.Config) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	be, cfg, err := open(ctx)
	if err != nil {
		return err
	}
	defer be.Close(context.Background())

	return fn(ctx, be, cfg)
}

func newMigrateCmd(open openFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, _ *config.Config) error {
				if be.DB == nil {
					return backend.ErrNotPostgres
				}
				if err := database.Migrate(ctx, be.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, _ *config.Config) error {
				if be.DB == nil {
					return backend.ErrNotPostgres
				}
				statuses, err := database.Status(ctx, be.DB)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
				for _, s := range statuses {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Source.Version, s.State, s.Source.Path)
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, _ *config.Config) error {
				if be.DB == nil {
					return backend.ErrNotPostgres
				}
				if err := database.Rollback(ctx, be.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
				return nil
			})
		},
	})

	return cmd
}

func newSeedCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development accounts and the Tech category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, _ *config.Config) error {
				if err := be.Migrate(ctx); err != nil {
					return err
				}
				if err := be.Seed(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
				return nil
			})
		},
	}
}

func newUserCmd(open openFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var (
		email string
		name  string
		role  string
		bio   string
	)
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(strings.ToLower(role))
			if !r.Valid() {
				return fmt.Errorf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
			}
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}

			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, _ *config.Config) error {
				u, err := be.Users.Create(ctx, &models.User{
					Username: strings.TrimSpace(args[0]),
					Email:    strings.TrimSpace(email),
					Name:     name,
					Bio:      bio,
					Role:     r,
					IsActive: true,
				})
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) %s\n", u.Username, u.Role, u.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&email, "email", "", "Email address (required)")
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().StringVar(&role, "role", string(models.RoleUser), "Role: user or admin")
	add.Flags().StringVar(&bio, "bio", "", "Short biography")

	cmd.AddCommand(add)
	return cmd
}

func newTokenCmd(open openFunc) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a bearer token for an active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, open, func(ctx context.Context, be *backend.Backend, cfg *config.Config) error {
				u, err := be.Users.FindByUsername(ctx, args[0])
				if err != nil {
					return fmt.Errorf("find user: %w", err)
				}
				if u == nil {
					return fmt.Errorf("user %q not found", args[0])
				}
				if !u.IsActive {
					return fmt.Errorf("user %q is deactivated", u.Username)
				}

				token, err := identity.New(cfg.JWTSecret, cfg.JWTIssuer).Issue(u, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", identity.DefaultTTL, "Token lifetime")
	return cmd
}
