package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/mcpsrv"
)

var mcpserveCmd = &cobra.Command{
	Use:   "mcpserve",
	Short: "Run the validate_directory tool as an MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpsrv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpserveCmd)
}
