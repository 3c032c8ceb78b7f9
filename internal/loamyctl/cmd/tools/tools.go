// Package tools implements the `loamyctl tools` command.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/loamy/internal/loamyctl/cmd/chat"
	"github.com/kiosk404/loamy/internal/loamyctl/cmd/util"
)

var toolsExample = heredoc.Doc(`
	# List the tools the assistant may call
	loamyctl tools`)

// ToolsOptions is an options struct to support 'tools' sub command.
type ToolsOptions struct {
	client *util.ClientOptions
	util.IOStreams
}

// NewCmdTools returns new initialized instance of 'tools' sub command.
func NewCmdTools(client *util.ClientOptions, ioStreams util.IOStreams) *cobra.Command {
	o := &ToolsOptions{client: client, IOStreams: ioStreams}

	return &cobra.Command{
		Use:                   "tools",
		DisableFlagsInUseLine: true,
		Short:                 "List the tools the assistant may call",
		Example:               toolsExample,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context())
		},
	}
}

// Run executes a tools sub command using the specified options.
func (o *ToolsOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := chat.NewClient(util.NormalizeServer(o.client.Server), nil)
	sigs, err := client.Tools(ctx)
	if err != nil {
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	table.AddRow("NAME", "PARAMETERS", "DESCRIPTION")
	for _, s := range sigs {
		params := make([]string, 0, len(s.Parameters))
		for _, p := range s.Parameters {
			param := p.Name + ":" + p.Type
			if !p.Required {
				param += "?"
			}
			params = append(params, param)
		}
		table.AddRow(s.Name, strings.Join(params, ", "), s.Description)
	}
	fmt.Fprintln(o.Out, table)
	return nil
}
