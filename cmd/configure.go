package cmd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evelabs/evectl/lab"
	"github.com/evelabs/evectl/utils"
)

var (
	bootBudget  time.Duration
	showOutput  bool
	dialRetries uint64
)

// configureCmd represents the configure command.
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "bootstrap device consoles and push their configuration",
	Long: "connect to each router's telnet console, negotiate the first-boot dialog,\n" +
		"push the configuration lines from the topology and run verification commands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := lab.ParseTopologyFile(topo)
		if err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}

		cfg := lab.NewConfigurer(client, t)
		cfg.BootBudget = bootBudget
		cfg.DialRetries = dialRetries

		reports := cfg.Configure(cmd.Context())

		failed := 0
		for _, rep := range reports {
			switch {
			case rep.Err != nil:
				failed++
				log.Errorf("%s (%s): %v", rep.Node, rep.Endpoint, rep.Err)
			case rep.Boot != nil && !rep.Boot.Ready():
				// advisory: the device may just be slow; the transcript tells
				log.Warnf("%s (%s): not ready after boot negotiation, tail: %s",
					rep.Node, rep.Endpoint, utils.Tail(rep.Boot.Transcript, 200))
			default:
				log.Infof("%s (%s): configured", rep.Node, rep.Endpoint)
			}

			if showOutput {
				for _, e := range rep.Verify {
					fmt.Printf("=== %s: %s ===\n%s\n", rep.Node, e.Stage, e.Output)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d devices failed", failed, len(reports))
		}
		return nil
	},
}

func init() {
	configureCmd.Flags().DurationVarP(&bootBudget, "boot-budget", "", 4*time.Minute,
		"overall time budget for one device's boot negotiation")
	configureCmd.Flags().Uint64VarP(&dialRetries, "dial-retries", "", 5,
		"console connect attempts per device")
	configureCmd.Flags().BoolVarP(&showOutput, "show-output", "o", false,
		"print verification command transcripts")
	rootCmd.AddCommand(configureCmd)
}
