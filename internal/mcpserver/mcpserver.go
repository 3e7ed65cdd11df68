// Package mcpserver exposes the command normalizer and the game as Model
// Context Protocol tools, so that an assistant can drive the player.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/coinhop/internal/control"
	"github.com/MrWong99/coinhop/internal/game"
	"github.com/MrWong99/coinhop/pkg/command"
)

// Tool names.
const (
	ToolNormalize = "normalize_command"
	ToolPlay      = "play_command"
	ToolState     = "game_state"
	ToolColors    = "list_colors"
)

// TextInput is the argument of the text-taking tools.
type TextInput struct {
	Text string `json:"text" jsonschema:"the player's utterance in English or Danish"`
}

// ColorsOutput lists the color names a change color command accepts.
type ColorsOutput struct {
	Colors []string `json:"colors"`
}

// New returns an MCP server with the coinhop tools registered on it.
func New(ctl *control.Controller, version string) *mcpsdk.Server {
	srv := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "coinhop", Version: version}, nil)

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolNormalize,
		Description: "Normalize an English or Danish utterance into a canonical game command without playing it.",
	}, func(_ context.Context, _ *mcpsdk.CallToolRequest, in TextInput) (*mcpsdk.CallToolResult, command.Result, error) {
		res := ctl.Normalizer().Analyze(in.Text)
		return textResult(res.Command), res, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolPlay,
		Description: "Normalize an utterance and apply it to the game. Rejected commands report a message and leave the game unchanged.",
	}, func(ctx context.Context, _ *mcpsdk.CallToolRequest, in TextInput) (*mcpsdk.CallToolResult, control.Outcome, error) {
		out := ctl.Play(ctx, in.Text)
		slog.Debug("mcpserver: played", "text", in.Text, "command", out.Result.Command, "applied", out.Applied)
		if !out.Applied {
			r := textResult(out.Message)
			r.IsError = true
			return r, out, nil
		}
		return textResult(fmt.Sprintf("%s: score %d", out.Result.Command, out.State.Score)), out, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolState,
		Description: "Return the current game state: player, coin, color, and score.",
	}, func(context.Context, *mcpsdk.CallToolRequest, struct{}) (*mcpsdk.CallToolResult, game.Snapshot, error) {
		s := ctl.World().Snapshot()
		return textResult(fmt.Sprintf("player at x=%d, coin at x=%d, score %d", s.Player.X, s.Coin.X, s.Score)), s, nil
	})

	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        ToolColors,
		Description: "List the color names accepted by change color, in English and Danish.",
	}, func(context.Context, *mcpsdk.CallToolRequest, struct{}) (*mcpsdk.CallToolResult, ColorsOutput, error) {
		names := ctl.Normalizer().Lexicon().ColorNames()
		return textResult(fmt.Sprintf("%d colors plus %q", len(names), command.RandomColor)), ColorsOutput{Colors: names}, nil
	})

	return srv
}

// Serve runs srv over stdin and stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, srv *mcpsdk.Server) error {
	if err := srv.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcpserver: %w", err)
	}
	return nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}
