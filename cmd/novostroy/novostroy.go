// Package novostroycmder
package novostroycmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/novostroy/cmd/novostroy/ask"
	configcmder "github.com/papercomputeco/novostroy/cmd/novostroy/config"
	historycmder "github.com/papercomputeco/novostroy/cmd/novostroy/history"
	initcmder "github.com/papercomputeco/novostroy/cmd/novostroy/init"
	seedcmder "github.com/papercomputeco/novostroy/cmd/novostroy/seed"
	servecmder "github.com/papercomputeco/novostroy/cmd/novostroy/serve"
	versioncmder "github.com/papercomputeco/novostroy/cmd/version"
)

const novostroyLongDesc string = `Novostroy is an AI assistant for finding an apartment in a new
residential complex ("ЖК").

Run services using:
  novostroy serve api      Run the catalog API server
  novostroy serve proxy    Run the ai-search function
  novostroy serve          Run both servers together

Search using:
  novostroy ask            Start an interactive search
  novostroy ask <query>    Ask a single question`

const novostroyShortDesc string = "Novostroy - AI apartment search"

func NewNovostroyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "novostroy",
		Short:         novostroyShortDesc,
		Long:          novostroyLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .novostroy/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
