package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the UDMF client.
// It registers the data command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "udmf",
		Short: "UDMF client commands",
	}
	root.AddCommand(NewDataCommand(baseURL))
	return root
}
