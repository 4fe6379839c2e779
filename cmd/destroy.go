package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evelabs/evectl/lab"
)

// destroyCmd represents the destroy command.
var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "delete the lab from the EVE server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := lab.ParseTopologyFile(topo)
		if err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}

		if err := lab.NewBuilder(client, t).Destroy(cmd.Context()); err != nil {
			return err
		}
		log.Infof("lab %q destroyed", t.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(destroyCmd)
}
