// Package main implements authboxctl, the operator command line for the
// AuthBox service. It talks directly to the database, so DATABASE_URL must
// point at the same instance the server uses.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/avissapr/authbox/internal/config"
	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/spf13/cobra"
)

// commandTimeout bounds every one-shot CLI action.
const commandTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "authboxctl",
		Short:        "Operator tooling for the AuthBox account and permission service",
		SilenceUsage: true,
	}

	root.AddCommand(
		newGrantCmd(),
		newCreateUserCmd(),
		newMigrateCmd(),
	)

	return root
}

// connect loads configuration and opens the shared database pool.
// The returned func closes it.
func connect() (func(), error) {
	config.Load()

	if err := database.Connect(nil); err != nil {
		return nil, err
	}
	return database.Close, nil
}

// newGrantCmd builds the one-shot assignment command: resolve a permission
// by codename and grant it to a user and a group in one action. Both grants
// are idempotent; an unknown codename fails before anything is written.
func newGrantCmd() *cobra.Command {
	var (
		userEmail string
		groupName string
		codename  string
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a permission to a user and a group",
		Example: `  authboxctl grant --user-email normal@user.com --group customer --permission add_post`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			return runGrant(ctx, userEmail, groupName, codename, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&userEmail, "user-email", "", "email of the target account")
	cmd.Flags().StringVar(&groupName, "group", "", "name of the target group")
	cmd.Flags().StringVar(&codename, "permission", "", "permission codename (e.g. add_post)")
	_ = cmd.MarkFlagRequired("user-email")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("permission")

	return cmd
}

// runGrant resolves the three targets and performs the assignment. The
// audit entry references the resolved permission; a failed audit write is
// reported as a warning rather than failing an otherwise completed grant.
func runGrant(ctx context.Context, userEmail, groupName, codename string, out, errOut io.Writer) error {
	users := repository.NewUserRepository()
	groups := repository.NewGroupRepository()
	permRepo := repository.NewPermissionRepository()
	perms := services.NewPermissionService(permRepo)

	user, err := users.FindByEmail(ctx, userEmail)
	if err != nil {
		return err
	}
	group, err := groups.FindByName(ctx, groupName)
	if err != nil {
		return err
	}
	permission, err := permRepo.FindByCodename(ctx, codename)
	if err != nil {
		return err
	}

	if err := perms.Assign(ctx, user, group, permission.Codename); err != nil {
		return err
	}

	audit := repository.NewAuditRepository()
	if err := audit.Log(ctx, &models.AuditLog{
		Action:     "ASSIGN_PERMISSION",
		ObjectType: "permission",
		ObjectID:   &permission.ID,
		UserAgent:  "authboxctl",
	}); err != nil {
		fmt.Fprintf(errOut, "warning: audit entry not written: %v\n", err)
	}

	fmt.Fprintf(out, "granted %q to user %s and group %s\n", codename, user.Email, group.Name)
	return nil
}

func newCreateUserCmd() *cobra.Command {
	var form models.CreateUserForm

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			users := repository.NewUserRepository()
			cfg := security.DefaultSecurityConfig()
			auth := services.NewAuthService(nil, cfg.BcryptCost)
			svc := services.NewUserService(users, auth)

			user, err := svc.CreateUser(ctx, form)
			if err != nil {
				return err
			}

			fmt.Printf("created account %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "login email, must be unique")
	cmd.Flags().StringVar(&form.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "contact number")
	cmd.Flags().StringVar(&form.DateOfBirth, "date-of-birth", "", "optional, YYYY-MM-DD")
	cmd.Flags().BoolVar(&form.IsAdmin, "admin", false, "grant admin privileges")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				config.Load()
				return database.RunMigrations()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				config.Load()
				return database.RollbackMigration()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				config.Load()
				version, dirty, err := database.GetMigrationVersion()
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty=%v)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}
