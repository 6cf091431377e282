// Package historycmder provides the history command, which lists recorded
// searches from the catalog API.
package historycmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/client"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/storage"
	"github.com/papercomputeco/novostroy/pkg/utils"
)

const historyLongDesc string = `List recent searches.

Shows the queries answered by the ai-search function, newest first, with the
recommended complexes and stream statistics.

Examples:
  novostroy history
  novostroy history --limit 5 --api-target http://localhost:8081`

const historyShortDesc string = "List recent searches"

const answerWidth = 72

type historyCommander struct {
	apiTarget string
	limit     int

	viper *viper.Viper
	out   io.Writer
}

var flags = []string{
	config.FlagAPITarget,
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, flags)

			cmder.viper = v
			cmder.apiTarget = config.Load(v).Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum number of searches to list")

	return cmd
}

func (c *historyCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cl := client.New(client.Config{
		APITarget: c.apiTarget,
		Token:     c.viper.GetString(config.KeyClientToken),
	})

	searches, err := cl.ListSearches(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("listing searches: %w", err)
	}

	printSearches(c.out, searches)
	return nil
}

func printSearches(out io.Writer, searches []storage.SearchRecord) {
	if len(searches) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No searches yet."))
		return
	}

	fmt.Fprintln(out)
	for _, s := range searches {
		fmt.Fprintf(out, "  %s  %s\n",
			cliui.DimStyle.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.NameStyle.Render(s.Query),
		)

		answer := strings.Join(strings.Fields(s.Display), " ")
		if answer != "" {
			fmt.Fprintf(out, "    %s\n", cliui.ValueStyle.Render(utils.Truncate(answer, answerWidth)))
		}

		meta := fmt.Sprintf("%d fragments · %s", s.Fragments, cliui.FormatDuration(s.Duration))
		if s.Recovered > 0 || s.Dropped > 0 {
			meta += fmt.Sprintf(" · %d recovered · %d dropped", s.Recovered, s.Dropped)
		}
		if len(s.ComplexIDs) > 0 {
			meta += " · ЖК " + strings.Join(s.ComplexIDs, ", ")
		}
		fmt.Fprintf(out, "    %s\n\n", cliui.DimStyle.Render(meta))
	}
}
