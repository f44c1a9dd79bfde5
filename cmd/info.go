package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/config"
	"github.com/scprotocol/scctl/dashboard"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the protocol stats and your position once",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		stop := appUI.Spinner("Reading protocol state...")
		update := a.poller.Fetch(cmd.Context())
		stop()
		dashboard.Render(appUI, a.registry, update, dashboard.Options{Verbose: config.Verbose})
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "also show how the protocol works and every contract address")
	rootCmd.AddCommand(infoCmd)
}
