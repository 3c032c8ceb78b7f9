// Package chat implements the `loamyctl chat` command.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kiosk404/loamy/internal/loamyctl/cmd/util"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

var chatExample = heredoc.Doc(`
	# Interactive session, type "exit" to leave
	loamyctl chat

	# Single message
	loamyctl chat "Is Alice verified?"

	# Talk to a remote server without progress events
	loamyctl chat --server=https://loamy.example.com --stream=false`)

// ChatOptions is an options struct to support 'chat' sub command.
type ChatOptions struct {
	Stream bool

	client  *util.ClientOptions
	history []json.RawMessage
	util.IOStreams
}

// NewChatOptions returns an initialized ChatOptions instance.
func NewChatOptions(client *util.ClientOptions, ioStreams util.IOStreams) *ChatOptions {
	return &ChatOptions{
		Stream:    true,
		client:    client,
		IOStreams: ioStreams,
	}
}

// NewCmdChat returns new initialized instance of 'chat' sub command.
func NewCmdChat(client *util.ClientOptions, ioStreams util.IOStreams) *cobra.Command {
	o := NewChatOptions(client, ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [message]",
		DisableFlagsInUseLine: true,
		Short:                 "Talk to the lending assistant",
		Long: heredoc.Doc(`
			Talk to the lending assistant through the loamy server.

			Without arguments an interactive session is started and the
			conversation is kept until you leave it. With a message argument
			the message is sent once and the reply printed.`),
		Example: chatExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVar(&o.Stream, "stream", o.Stream, "Show tool calls while the assistant works.")

	return cmd
}

// Run executes a chat sub command using the specified options.
func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := NewClient(util.NormalizeServer(o.client.Server), nil)

	if len(args) > 0 {
		return o.send(ctx, client, strings.Join(args, " "))
	}

	fmt.Fprintln(o.Out, color.CyanString("Loamy lending assistant. Type \"exit\" to leave."))
	scanner := bufio.NewScanner(o.In)
	for {
		fmt.Fprint(o.Out, color.GreenString("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(o.Out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := o.send(ctx, client, line); err != nil {
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				return err
			}
			// Coded failures leave the history untouched; the user can retry.
			fmt.Fprintln(o.ErrOut, color.RedString(apiErr.Message))
		}
	}
}

func (o *ChatOptions) send(ctx context.Context, client *Client, message string) error {
	var (
		reply *Reply
		err   error
	)
	if o.Stream {
		reply, err = client.ChatStream(ctx, o.history, message, o.progress)
	} else {
		reply, err = client.Chat(ctx, o.history, message)
	}
	if err != nil {
		return err
	}

	o.history = reply.History
	fmt.Fprintf(o.Out, "%s %s\n", color.CyanString("loamy>"), reply.Reply)
	if reply.ArtifactLink != "" {
		fmt.Fprintf(o.Out, "%s %s\n", color.YellowString("document:"), reply.ArtifactLink)
	}
	return nil
}

func (o *ChatOptions) progress(ev Event) {
	switch ev.Name {
	case "tool_call":
		fmt.Fprintf(o.ErrOut, "%s\n", color.HiBlackString("  calling %s...", ev.ToolName()))
	case "tool_result":
		fmt.Fprintf(o.ErrOut, "%s\n", color.HiBlackString("  %s answered", ev.ToolName()))
	}
}
