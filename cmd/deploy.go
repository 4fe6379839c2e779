package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evelabs/evectl/lab"
)

// deployCmd represents the deploy command.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "create the lab topology on the EVE server and start its nodes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := lab.ParseTopologyFile(topo)
		if err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}

		plan, err := lab.NewBuilder(client, t).Deploy(cmd.Context())
		if err != nil {
			return err
		}

		for _, l := range plan.Links {
			log.Infof("%s %s <-> %s %s (net %s, id %s)",
				l.Router, l.RouterInterface, l.Switch, l.SwitchInterface, l.Network, l.NetworkID)
		}
		if plan.Started {
			log.Infof("lab %q deployed and started", plan.Lab)
		} else {
			log.Infof("lab %q deployed (nodes not started)", plan.Lab)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
