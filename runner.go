package colloquy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/story"
)

// View is what the Runner writes to. The terminal renderer in
// internal/presentation/tui satisfies it.
type View interface {
	Line(node *domain.Node)
	Choices(choices []domain.Choice)
	Prompt()
	StoryLines(lines []string)
	Notice(format string, args ...any)
}

var errQuit = errors.New("player quit")

// Runner plays a conversation against an Engine using the provided IO.
// Nodes that need no input are advanced automatically; multiple-choice nodes
// read a 1-based choice number per line.
type Runner struct {
	Input io.Reader
	View  View
	// AutoChoose follows the first choice instead of reading input.
	AutoChoose bool
}

// Run plays from start until the conversation ends, the player quits
// ("quit", "exit" or end of input) or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, engine *Engine, start *domain.Node) error {
	if r.View == nil {
		return fmt.Errorf("runner view must be set")
	}
	if r.Input == nil && !r.AutoChoose {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	var reader *bufio.Reader
	if r.Input != nil {
		reader = bufio.NewReader(r.Input)
	}

	err := engine.Container().Walk(start, engine.Variables(), engine.stepBudget, func(node *domain.Node) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		engine.Enter(node)

		switch node.Kind {
		case domain.KindExternalFunctionCall:
			if err := engine.Dispatch(ctx, node); err != nil {
				return 0, err
			}
		case domain.KindExternalStoryEntry:
			err := engine.Delegate(node, func(s *story.Session) error {
				r.View.StoryLines(s.Lines())
				return nil
			})
			if err != nil {
				return 0, err
			}
		default:
			r.View.Line(node)
		}

		if !dialogue.IsInteractive(node) {
			return 0, nil
		}
		r.View.Choices(node.Choices)
		if r.AutoChoose {
			return 0, nil
		}
		return r.choose(ctx, reader, len(node.Choices))
	})
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (r *Runner) choose(ctx context.Context, reader *bufio.Reader, n int) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		r.View.Prompt()
		text, err := reader.ReadString('\n')
		input := strings.TrimSpace(text)
		if err != nil && input == "" {
			if err == io.EOF {
				return 0, errQuit
			}
			return 0, fmt.Errorf("input error: %w", err)
		}
		if input == "quit" || input == "exit" {
			return 0, errQuit
		}
		idx, convErr := strconv.Atoi(input)
		if convErr == nil && idx >= 1 && idx <= n {
			return idx - 1, nil
		}
		r.View.Notice("Pick a number between 1 and %d.", n)
	}
}
