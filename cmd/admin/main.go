// Command admin runs maintenance tasks against the configured backend:
// schema migrations, table provisioning, config inspection and local
// development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crux-backend/infrastructure/config"
	"crux-backend/infrastructure/di"
	"crux-backend/infrastructure/persistence/dynamodb"
	"crux-backend/infrastructure/persistence/sqlstore"
	"crux-backend/pkg/auth"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string

	tokenSecret string
	tokenHome   string
	tokenRoles  []string
	tokenTTL    time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	configFile, tokenSecret, tokenHome, tokenRoles = "", "", "", nil

	root := &cobra.Command{
		Use:           "crux-admin",
		Short:         "Maintenance commands for the crux backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to $CONFIG_FILE)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations or create the DynamoDB table",
		RunE:  runMigrate,
	}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List applied SQL migrations",
		RunE:  runMigrateStatus,
	}
	migrateCmd.AddCommand(statusCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		RunE:  runConfig,
	}

	tokenCmd := &cobra.Command{
		Use:   "token [author-id]",
		Short: "Sign a development bearer token",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	tokenCmd.Flags().StringVar(&tokenHome, "home", "", "home id claim")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", nil, "role claim, repeatable")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	root.AddCommand(migrateCmd, configCmd, tokenCmd)
	return root
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadConfig()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger, err := di.ProvideLogger(cfg, di.ProvideLogLevel(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	switch cfg.Storage {
	case config.StorageMemory:
		fmt.Fprintln(cmd.OutOrStdout(), "memory storage has no schema")
		return nil

	case config.StorageDynamoDB:
		awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return err
		}
		created, err := dynamodb.EnsureTable(ctx, di.ProvideDynamoDBClient(awsCfg), cfg.DynamoDBTable, logger)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created table %s\n", cfg.DynamoDBTable)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "table %s already exists\n", cfg.DynamoDBTable)
		}
		return nil

	default:
		backend, cleanup, err := openSQL(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		applied, err := backend.Migrate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
		return nil
	}
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage != config.StorageSQLite && cfg.Storage != config.StoragePostgres {
		return fmt.Errorf("migration history needs sql storage, got %q", cfg.Storage)
	}

	ctx := cmd.Context()
	backend, cleanup, err := openSQL(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer cleanup()

	migrator, err := backend.Migrator()
	if err != nil {
		return err
	}
	history, err := migrator.History(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range history {
		fmt.Fprintf(out, "%4d  %s  %s\n", v.Version, v.AppliedAt.UTC().Format(time.RFC3339), v.Description)
	}
	fmt.Fprintf(out, "%d of %d applied\n", len(history), migrator.Latest())
	return nil
}

func openSQL(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstore.Backend, func(), error) {
	// migrations run explicitly here, never as a side effect of opening
	cfg.AutoMigrate = false
	backend, cleanup, err := di.ProvideBackend(ctx, cfg, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	return backend.(*sqlstore.Backend), cleanup, nil
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := cfg.Redacted().YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to sign tokens in production")
	}

	secret := tokenSecret
	if secret == "" {
		secret = cfg.JWTSecret
	}
	if secret == "" {
		secret = di.DevelopmentSecret
	}

	generator, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SecretKey:  secret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		ExpiryTime: tokenTTL,
	})
	if err != nil {
		return err
	}
	token, err := generator.GenerateToken(args[0], tokenHome, tokenRoles)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
