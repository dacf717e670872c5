package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/registry"
	"github.com/aretw0/colloquy/pkg/rules"
	"github.com/aretw0/colloquy/pkg/variables"
)

// Announcer receives a line for every function the terminal host performs.
type Announcer interface {
	Notice(format string, args ...any)
}

// NewTerminalRegistry maps every typed function, and every Custom name used by
// c, to a handler that announces the call. SetVariable is performed for real
// against vars; see setVariable for the parameter forms.
func NewTerminalRegistry(c *dialogue.Container, vars *variables.Store, out Announcer, logger *slog.Logger) (*registry.Registry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	reg := registry.NewRegistry(registry.WithLogger(logger))
	announce := func(call domain.FunctionCall) registry.Handler {
		return func(ctx context.Context, parameter string) error {
			call.Parameter = parameter
			out.Notice("[%s]", project.FormatFunctionCall(call))
			return nil
		}
	}

	for _, fn := range domain.ExternalFunctions {
		if fn == domain.FuncCustom || fn == domain.FuncSetVariable {
			continue
		}
		if err := reg.Register(fn, announce(domain.FunctionCall{Function: fn})); err != nil {
			return nil, err
		}
	}
	if err := reg.Register(domain.FuncSetVariable, setVariable(vars)); err != nil {
		return nil, err
	}

	for _, node := range c.Nodes() {
		if node.Function == nil || !node.Function.IsCustom() || node.Function.Name == "" {
			continue
		}
		name := node.Function.Name
		if err := reg.RegisterCustom(name, announce(domain.FunctionCall{Function: domain.FuncCustom, Name: name})); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// setVariable applies "Name=value", "Name+=value", "Name-=value" or "!Name"
// through the modification rules.
func setVariable(vars *variables.Store) registry.Handler {
	return func(ctx context.Context, parameter string) error {
		name, op, text, err := parseAssignment(parameter)
		if err != nil {
			return err
		}
		var operand domain.Value
		if rules.NeedsOperand(op) {
			typ, err := vars.TypeOf(name)
			if err != nil {
				return err
			}
			if operand, err = domain.ParseValue(typ, text); err != nil {
				return err
			}
		}
		_, err = rules.Apply(vars, name, op, operand)
		return err
	}
}

func parseAssignment(parameter string) (string, domain.ModificationOperator, string, error) {
	parameter = strings.TrimSpace(parameter)
	if name, ok := strings.CutPrefix(parameter, "!"); ok {
		return strings.TrimSpace(name), domain.OpToggle, "", nil
	}
	left, text, ok := strings.Cut(parameter, "=")
	if !ok {
		return "", "", "", fmt.Errorf("expected Name=value, got %q", parameter)
	}
	op := domain.OpSet
	switch {
	case strings.HasSuffix(left, "+"):
		op, left = domain.OpIncrease, strings.TrimSuffix(left, "+")
	case strings.HasSuffix(left, "-"):
		op, left = domain.OpDecrease, strings.TrimSuffix(left, "-")
	}
	return strings.TrimSpace(left), op, strings.TrimSpace(text), nil
}
