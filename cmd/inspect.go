package cmd

import (
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/evelabs/evectl/lab"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "show the lab's nodes and their console endpoints",
	Aliases: []string{"ins", "i"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := lab.ParseTopologyFile(topo)
		if err != nil {
			return err
		}

		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}

		nodes, err := client.ListNodes(cmd.Context(), t.Name, t.Folder)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(nodes))
		byName := map[string]string{}
		for id, n := range nodes {
			names = append(names, n.Name)
			byName[n.Name] = id
		}
		sort.Strings(names)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Template", "Status", "Console"})
		for _, name := range names {
			n := nodes[byName[name]]
			consoleAddr := ""
			if info, err := client.ConsoleEndpoint(cmd.Context(), t.Name, t.Folder, n.Name); err == nil {
				consoleAddr = info.Endpoint.Addr()
			}
			table.Append([]string{n.ID.String(), n.Name, n.Template, n.Status.String(), consoleAddr})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
