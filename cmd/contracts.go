package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/dashboard"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Show the protocol contract addresses on the selected network",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		dashboard.Contracts(appUI, reg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contractsCmd)
}
