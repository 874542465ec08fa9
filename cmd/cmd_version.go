package cmd

import (
	"fmt"

	"github.com/mintfall/auction-engine/modules/dutchauction"
	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show auction-engine version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println(dutchauction.Version)
		},
	}
}
