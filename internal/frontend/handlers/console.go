// Package handlers runs the dice console over a Telnet session: command
// dispatch, per-session state, and text rendering of roll records.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/game/command"
	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
)

// RollService is the roll API the console drives.
type RollService interface {
	Roll2D6(ctx context.Context, modifier int) (rolllog.Record, error)
	RollSingle(ctx context.Context, sides int) (rolllog.Record, error)
	RollCustom(ctx context.Context, text string) ([]rolllog.Record, error)
	RollStructured(ctx context.Context, count, sides, modifier string) (rolllog.Record, error)
	DeleteRecord(ctx context.Context, index int) (bool, error)
	ClearAll(ctx context.Context) error
	Log(ctx context.Context) []rolllog.Record
	Presets() *preset.Set
}

const prompt = telnet.BrightCyan + "dice> " + telnet.Reset

// Console implements telnet.SessionHandler for the dice console.
type Console struct {
	svc      RollService
	registry *command.Registry
	name     string
	logger   *zap.Logger
}

// NewConsole creates a Console serving svc.
//
// Precondition: svc, registry, and logger must be non-nil.
func NewConsole(svc RollService, registry *command.Registry, name string, logger *zap.Logger) *Console {
	return &Console{svc: svc, registry: registry, name: name, logger: logger}
}

// session is the per-connection console state.
type session struct {
	conn    *telnet.Conn
	logger  *zap.Logger
	modPage int
}

// HandleSession implements telnet.SessionHandler. It greets the client and
// runs commands until quit, disconnect, or cancellation.
//
// Postcondition: Returns nil on quit or hang-up, ctx.Err() on cancellation,
// or the I/O error that ended the session.
func (c *Console) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	s := &session{
		conn:   conn,
		logger: c.logger.With(zap.String("session_id", conn.SessionID())),
	}

	if err := conn.WriteLines(c.banner()...); err != nil {
		return fmt.Errorf("sending banner: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WritePrompt(prompt); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				s.logger.Info("client hung up", zap.Duration("session_duration", time.Since(start)))
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		res, err := c.dispatch(ctx, s, parsed)
		if err != nil {
			return err
		}
		if res.quit {
			s.logger.Info("console quit", zap.Duration("session_duration", time.Since(start)))
			return nil
		}
	}
}

func (c *Console) banner() []string {
	return []string{
		"",
		telnet.Colorize(fmt.Sprintf("  %s: 2d6 dice console", c.name), telnet.Bold, telnet.BrightCyan),
		"  Type " + telnet.Colorize("roll", telnet.Green) + " to roll 2d6, " +
			telnet.Colorize("help", telnet.Green) + " for all commands.",
		"",
	}
}

// dispatch resolves parsed and runs its handler.
func (c *Console) dispatch(ctx context.Context, s *session, parsed command.ParseResult) (consoleResult, error) {
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		return consoleResult{}, s.fail(fmt.Sprintf("Unknown command %q. Type help for a list.", parsed.Command))
	}
	fn, ok := consoleHandlerMap[cmd.Handler]
	if !ok {
		s.logger.Error("command has no console handler", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
		return consoleResult{}, s.fail("That command is not available here.")
	}
	return fn(&consoleContext{
		ctx:      ctx,
		console:  c,
		session:  s,
		cmd:      cmd,
		parsed:   parsed,
		registry: c.registry,
	})
}

// fail writes msg in red. Only the write error is returned.
func (s *session) fail(msg string) error {
	return s.write(telnet.Colorize(msg, telnet.Red))
}

// write sends lines, treating a closed connection as the end of the session.
func (s *session) write(lines ...string) error {
	if err := s.conn.WriteLines(lines...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// confirm asks a yes/no question and reports whether the answer was yes.
func (s *session) confirm(question string) (bool, error) {
	if err := s.conn.WritePrompt(telnet.Colorize(question+" (yes/no) ", telnet.Yellow)); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}
	answer, err := s.conn.ReadLine()
	if err != nil {
		return false, fmt.Errorf("reading input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// reportStoreError tells the client a change could not be saved. The
// session carries on.
func (s *session) reportStoreError(err error) error {
	if err == nil {
		return nil
	}
	s.logger.Error("persisting roll log", zap.Error(err))
	return s.fail("Warning: the roll log could not be saved.")
}
