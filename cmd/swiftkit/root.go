package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	envFile    string
	redisAddr  string
	logLevel   string
}

// newRootCmd builds the command tree. Subcommands share one app, set up
// before and closed after each run.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	a := &app{}

	root := &cobra.Command{
		Use:           "swiftkit",
		Short:         "Command-line client for OpenStack Swift object storage",
		Long:          `swiftkit authenticates against a Keystone (v1, v2 or v3) identity service and manages the containers and objects of one Swift account. Settings come from swiftkit.yml, a .env file and environment variables such as SWIFT_AUTH_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), flags)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default is ./swiftkit.yml)")
	pf.StringVar(&flags.envFile, "env-file", "", "env file loaded before reading the environment (default is ./.env)")
	pf.StringVar(&flags.redisAddr, "redis-addr", "", "cache tokens in the Redis server at host:port")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newContainersCmd(a),
		newObjectsCmd(a),
		newCreateCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newDeleteCmd(a),
		newTempURLCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}
