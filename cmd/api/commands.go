package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"rating-user-service/cmd/api/app"
	"rating-user-service/cmd/api/server"
	"rating-user-service/internal/adapter/db/postgres"
)

const (
	configPathFlag = "config-path"
	dialectFlag    = "dialect"
)

// runFunc starts the service with configuration read from configPath.
type runFunc func(ctx context.Context, configPath string) error

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rating-user-service",
		Short:         "User registration service with ratings and a joke proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(runService), newSchemaCommand())
	return root
}

// Flag maps are built per command: a cobraflags flag stays bound to the
// first pflag it was read through.
func newServeFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		configPathFlag: &cobraflags.StringFlag{
			Name:  configPathFlag,
			Value: defaultConfigPath(),
			Usage: "Directory holding app.env",
		},
	}
}

func newSchemaFlags() map[string]cobraflags.Flag {
	return map[string]cobraflags.Flag{
		dialectFlag: &cobraflags.StringFlag{
			Name:  dialectFlag,
			Value: postgres.DialectPostgres,
			Usage: "Database dialect (postgres, sqlite)",
		},
	}
}

func newServeCommand(run runFunc) *cobra.Command {
	flags := newServeFlags()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := server.WithSignal(cmd.Context())
			defer stop()

			return run(ctx, flags[configPathFlag].GetString())
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newSchemaCommand() *cobra.Command {
	flags := newSchemaFlags()
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the users table DDL",
		Long: `Print the CREATE TABLE statement the service applies at startup,
including the named uniqueness and rating check constraints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ddl, err := postgres.DDL(flags[dialectFlag].GetString())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", ddl)
			return err
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func runService(ctx context.Context, configPath string) error {
	a, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
