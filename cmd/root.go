package cmd

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evelabs/evectl/eve"
	"github.com/evelabs/evectl/utils"
)

var (
	debug    bool
	topo     string
	timeout  time.Duration
	envFile  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "evectl",
	Short:        "provision EVE-NG router/switch labs and bootstrap their consoles",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		}
		// credentials may live in a .env next to the topology
		if err := godotenv.Load(envFile); err != nil {
			log.Debugf("no env file loaded: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&topo, "topo", "t", "", "path to the topology definition file")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "", 30*time.Second,
		"timeout for EVE API requests, e.g: 30s, 1m")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "", ".env",
		"file with EVE_BASE_URL / EVE_USERNAME / EVE_PASSWORD")
}

// newClient builds and logs in an EVE client from the environment.
func newClient(ctx context.Context) (*eve.Client, error) {
	client, err := eve.NewClient(eve.Config{
		BaseURL:     utils.GetEnvOrDefault("EVE_BASE_URL", ""),
		Username:    utils.GetEnvOrDefault("EVE_USERNAME", ""),
		Password:    utils.GetEnvOrDefault("EVE_PASSWORD", ""),
		Author:      utils.GetEnvOrDefault("EVE_DEFAULT_AUTHOR", "evectl"),
		Description: utils.GetEnvOrDefault("EVE_DEFAULT_DESCRIPTION", "Created by evectl"),
		Timeout:     timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
