// Package commands implements the crm command tree.
package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/cmd/crm/output"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/audit"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/logging"
	"github.com/diewo77/go-crm/internal/repository"
	"github.com/diewo77/go-crm/internal/services"
)

// app carries the global flags and what PersistentPreRunE builds from them.
type app struct {
	// Global flags
	tokenFile  string
	jsonOutput bool
	verbose    bool

	cfg    *config.Config
	log    *logrus.Logger
	db     *gorm.DB
	issuer *auth.Issuer
	tokens *TokenStore

	clients   *services.ClientService
	contracts *services.ContractService
	events    *services.EventService
	users     *services.UserService
}

// Execute runs the root command
func Execute() {
	a := &app{}
	err := a.rootCmd().Execute()
	a.close()
	if err != nil {
		output.Error(os.Stderr, "%s", err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crm",
		Short: "Manage clients, contracts and events",
		Long: `crm manages the clients, contracts and events of the company.

Log in first with "crm login"; the session token is kept in TOKEN_FILE
(default .crm_token) and is valid for two hours.

Roles:
  commercial - owns clients and their contracts, creates events
  support    - updates the events assigned to them
  gestion    - manages users, contracts and support assignments`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
				return nil
			}
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", "", "Session token file (overrides TOKEN_FILE)")
	cmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.userCmd(),
		a.clientCmd(),
		a.contractCmd(),
		a.eventCmd(),
	)
	return cmd
}

// setup loads the configuration, opens the database and builds the services.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	if a.tokenFile == "" {
		a.tokenFile = cfg.Auth.TokenFile
	}
	a.tokens = NewTokenStore(a.tokenFile)

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.log = logging.NewWithOutput(cmd.ErrOrStderr(), level, cfg.Log.Format)

	gdb, err := db.Open(cfg.Database, a.log)
	if err != nil {
		return err
	}
	a.db = gdb
	if err := db.Migrate(gdb, cfg); err != nil {
		return err
	}
	if err := db.Seed(gdb, cfg.Auth, a.log); err != nil {
		return err
	}

	store := repository.New(gdb)
	issuer, err := auth.NewIssuer(store, []byte(cfg.Auth.SessionSecret), auth.WithTTL(cfg.Auth.SessionTTL))
	if err != nil {
		return err
	}
	a.issuer = issuer

	opts := []services.Option{
		services.WithLogger(a.log),
		services.WithAudit(audit.Multi{audit.NewDBSink(gdb, a.log), audit.NewLogSink(a.log)}),
		services.WithLocation(cfg.App.EventLocation()),
	}
	a.clients = services.NewClientService(store, opts...)
	a.contracts = services.NewContractService(store, opts...)
	a.events = services.NewEventService(store, opts...)
	a.users = services.NewUserService(store, opts...)
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// identity resolves the stored session token. A token the issuer refuses is
// removed so the next command asks for a new login.
func (a *app) identity(ctx context.Context) (auth.Identity, error) {
	session, err := a.tokens.Load()
	if err != nil {
		return auth.Identity{}, err
	}
	id, err := a.issuer.Resolve(ctx, session.Token)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeInvalidToken) || apperrors.Is(err, apperrors.CodeExpiredSession) {
			_ = a.tokens.Clear()
		}
		return auth.Identity{}, err
	}
	return id, nil
}

// withIdentity adapts a command body that needs the logged-in caller.
func (a *app) withIdentity(fn func(cmd *cobra.Command, args []string, id auth.Identity) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := a.identity(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, args, id)
	}
}

// render prints v as JSON when --json is set, otherwise calls table.
func (a *app) render(cmd *cobra.Command, v any, table func() error) error {
	if a.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), v)
	}
	return table()
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidInput, "invalid id", map[string]string{"id": raw})
	}
	return uint(id), nil
}
