// Package askcmder provides the ask command, a terminal chat with the
// residential complex search assistant.
package askcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/client"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/dotdir"
	"github.com/papercomputeco/novostroy/pkg/logger"
)

type askCommander struct {
	functionTarget string
	apiTarget      string
	cityID         string

	resume   bool
	reset    bool
	markdown bool
	noCards  bool

	configDir string
	debug     bool
	viper     *viper.Viper
	logger    *slog.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

const askLongDesc string = `Ask the search assistant for residential complexes.

With a query as arguments, runs a single search and exits. Without arguments,
starts an interactive conversation; type /exit to leave.

The answer is streamed as it arrives. The complexes the assistant recommends
are then shown as cards, resolved through the catalog API.

Every turn is saved to the .novostroy/ directory. Use --resume to continue the
last conversation and --reset to forget it.

The bearer token, if any, is read from NOVOSTROY_CLIENT_TOKEN.

Examples:
  novostroy ask "двушка до 10 млн рядом с метро"
  novostroy ask --city spb
  novostroy ask --resume --markdown`

const askShortDesc string = "Search residential complexes with the AI assistant"

var flags = []string{
	config.FlagFunctionTarget,
	config.FlagAPITarget,
	config.FlagCityID,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: askShortDesc,
		Long:  askLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, flags)

			cfg := config.Load(v)
			cmder.viper = v
			cmder.functionTarget = cfg.Client.FunctionTarget
			cmder.apiTarget = cfg.Client.APITarget
			cmder.cityID = cfg.Client.CityID
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context(), args)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagFunctionTarget, &cmder.functionTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Registry, config.FlagCityID, &cmder.cityID)
	cmd.Flags().BoolVar(&cmder.resume, "resume", false, "Continue the last saved conversation")
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Forget the saved conversation before starting")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render finished answers as markdown instead of streaming them")
	cmd.Flags().BoolVar(&cmder.noCards, "no-cards", false, "Do not resolve recommended complexes")

	return cmd
}

func (c *askCommander) run(ctx context.Context, args []string) error {
	cliui.Setup(os.Stdout)

	if c.debug {
		c.logger = logger.New(
			logger.WithDebug(true),
			logger.WithPretty(true),
			logger.WithWriter(os.Stderr),
		)
	} else {
		c.logger = logger.Nop()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	ddm := dotdir.NewManager()
	if c.reset {
		if err := ddm.ClearConversation(c.configDir); err != nil {
			return err
		}
	}

	var history []chatstream.Message
	if c.resume {
		state, err := ddm.LoadConversation(c.configDir)
		if err != nil {
			return err
		}
		history = fromConversation(state)
		if state != nil && c.cityID == "" {
			c.cityID = state.CityID
		}
	}

	cl := client.New(client.Config{
		FunctionTarget: c.functionTarget,
		APITarget:      c.apiTarget,
		Token:          c.viper.GetString(config.KeyClientToken),
		Logger:         c.logger,
	})

	session := client.NewSession(cl, client.SessionConfig{
		CityID:  c.cityID,
		Logger:  c.logger,
		History: history,
	})

	if len(args) > 0 {
		if err := c.turn(ctx, cl, session, strings.Join(args, " ")); err != nil {
			return &turnError{err: err}
		}
		return nil
	}

	return c.interactive(ctx, cl, session)
}

func (c *askCommander) interactive(ctx context.Context, cl *client.Client, session *client.Session) error {
	messages := session.Messages()
	c.printLog(messages)

	fresh := len(messages) == 1
	if fresh {
		fmt.Fprintln(c.out)
		for i, s := range client.Suggestions {
			fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render(strconv.Itoa(i+1)+"."), s)
		}
	}

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprintf(c.out, "\n%s ", cliui.UserStyle.Render("›"))
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		switch query {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		if fresh {
			query = suggestion(query)
			fresh = false
		}

		if err := c.turn(ctx, cl, session, query); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(c.errOut, "%s %s\n", cliui.FailMark, describe(err))
		}
	}
}

// turn runs one search, prints the answer and the recommended complexes,
// and saves the conversation.
func (c *askCommander) turn(ctx context.Context, cl *client.Client, session *client.Session, query string) error {
	width := cliui.Width(os.Stdout)

	fmt.Fprintf(c.out, "\n%s ", cliui.AssistantStyle.Render("Ассистент:"))

	var (
		res chatstream.Result
		err error
	)
	if c.markdown {
		fmt.Fprintln(c.out)
		err = cliui.Step(c.errOut, "Ищу подходящие ЖК", func() error {
			res, err = session.Send(ctx, query, nil)
			return err
		})
		if err == nil {
			rendered, rerr := cliui.RenderMarkdown(res.Display, width)
			if rerr != nil {
				c.logger.Debug("rendering markdown", "error", rerr)
			}
			fmt.Fprint(c.out, rendered)
		}
	} else {
		printer := newStreamPrinter(c.out)
		res, err = session.Send(ctx, query, printer.Update)
		printer.Finish(res.Display)
	}

	if err != nil {
		fmt.Fprintln(c.out, client.Apology)
	} else if !c.noCards {
		c.printCards(ctx, cl, res.IDs, width)
	}

	state := toConversation(c.cityID, session.Messages(), res.IDs)
	if serr := dotdir.NewManager().SaveConversation(state, c.configDir); serr != nil {
		c.logger.Warn("saving conversation", "error", serr)
	}

	return err
}

func (c *askCommander) printCards(ctx context.Context, cl *client.Client, ids []string, width int) {
	if len(ids) == 0 {
		return
	}

	complexes, err := cl.ResolveComplexes(ctx, ids)
	if err != nil {
		fmt.Fprintf(c.errOut, "%s %s\n", cliui.FailMark,
			cliui.DimStyle.Render("Не удалось загрузить ЖК: "+err.Error()))
		return
	}

	fmt.Fprintln(c.out)
	for _, cx := range complexes {
		fmt.Fprintln(c.out, cliui.ComplexCard(cx, width))
	}
}

func (c *askCommander) printLog(log []chatstream.Message) {
	for _, m := range log {
		switch m.Role {
		case chatstream.RoleUser:
			fmt.Fprintf(c.out, "\n%s %s\n", cliui.UserStyle.Render("Вы:"), m.Content)
		case chatstream.RoleAssistant:
			fmt.Fprintf(c.out, "\n%s %s\n", cliui.AssistantStyle.Render("Ассистент:"), m.Content)
		}
	}
}

// suggestion maps "1".."N" to the matching suggested query.
func suggestion(input string) string {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(client.Suggestions) {
		return input
	}
	return client.Suggestions[n-1]
}

// turnError carries a failed turn out of the command with a readable message.
type turnError struct {
	err error
}

func (e *turnError) Error() string { return describe(e.err) }

func (e *turnError) Unwrap() error { return e.err }

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrRateLimited):
		return "Слишком много запросов. Подождите немного и попробуйте снова."
	case errors.Is(err, client.ErrPaymentRequired):
		return "Закончились кредиты AI-шлюза."
	default:
		return err.Error()
	}
}
