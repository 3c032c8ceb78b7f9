// Package cmd assembles the loamyctl command tree.
package cmd

import (
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/kiosk404/loamy/internal/loamyctl/cmd/chat"
	"github.com/kiosk404/loamy/internal/loamyctl/cmd/tools"
	"github.com/kiosk404/loamy/internal/loamyctl/cmd/util"
)

// NewDefaultLoamyCtlCommand creates the `loamyctl` command with default arguments.
func NewDefaultLoamyCtlCommand() *cobra.Command {
	return NewLoamyCtlCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewLoamyCtlCommand returns new initialized instance of the loamyctl root command.
func NewLoamyCtlCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	client := &util.ClientOptions{
		Server: "http://localhost:8080",
	}

	cmds := &cobra.Command{
		Use:   "loamyctl",
		Short: "loamyctl talks to the loamy lending assistant",
		Long: heredoc.Doc(`
			loamyctl is the command line client of the loamy server.

			It lets you chat with the lending assistant and inspect the
			tools it may call.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(errOut)

	flags := cmds.PersistentFlags()
	flags.StringVar(&client.Server, "server", client.Server, "Address of the loamy server.")

	ioStreams := util.IOStreams{In: in, Out: out, ErrOut: errOut}
	cmds.AddCommand(chat.NewCmdChat(client, ioStreams))
	cmds.AddCommand(tools.NewCmdTools(client, ioStreams))

	return cmds
}
