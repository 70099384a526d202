package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/game/command"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
	"github.com/cory-johannsen/dicetool/internal/tabletop"
)

// consoleContext carries all inputs a console handler needs.
type consoleContext struct {
	ctx      context.Context
	console  *Console
	session  *session
	cmd      *command.Command
	parsed   command.ParseResult
	registry *command.Registry
}

// consoleResult is returned by every console handler; quit ends the session.
type consoleResult struct {
	quit bool
}

// consoleHandlerFunc is the signature for all console dispatch functions.
// A returned error ends the session, so handlers report user mistakes to
// the client and return nil.
type consoleHandlerFunc func(cc *consoleContext) (consoleResult, error)

// consoleHandlerMap is the single source of truth for console dispatch.
// A new command needs a Handler constant in the command package and an entry here.
var consoleHandlerMap = map[string]consoleHandlerFunc{
	command.HandlerRoll2D6:    consoleRoll2D6,
	command.HandlerModifier:   consoleModifier,
	command.HandlerModPage:    consoleModPage,
	command.HandlerSingle:     consoleSingle,
	command.HandlerStructured: consoleStructured,
	command.HandlerExpression: consoleExpression,
	command.HandlerLog:        consoleLog,
	command.HandlerDelete:     consoleDelete,
	command.HandlerClear:      consoleClear,
	command.HandlerHelp:       consoleHelp,
	command.HandlerQuit:       consoleQuit,
}

func usage(cc *consoleContext) (consoleResult, error) {
	return consoleResult{}, cc.session.fail("Usage: " + cc.cmd.Usage)
}

// showRecord prints a freshly appended record, which is always index 0.
func showRecord(cc *consoleContext, rec rolllog.Record, storeErr error) (consoleResult, error) {
	if err := cc.session.write(RenderRecord(0, rec)...); err != nil {
		return consoleResult{}, err
	}
	return consoleResult{}, cc.session.reportStoreError(storeErr)
}

// consoleRoll2D6 rolls 2d6 with an optional signed modifier of any size.
func consoleRoll2D6(cc *consoleContext) (consoleResult, error) {
	mod, err := cc.parsed.IntArg(0, 0)
	if err != nil {
		return usage(cc)
	}
	rec, err := cc.console.svc.Roll2D6(cc.ctx, mod)
	return showRecord(cc, rec, err)
}

// consoleModifier rolls 2d6 with one of the preset modifier buttons.
func consoleModifier(cc *consoleContext) (consoleResult, error) {
	if len(cc.parsed.Args) != 1 {
		return usage(cc)
	}
	mod, err := cc.parsed.IntArg(0, 0)
	if err != nil {
		return usage(cc)
	}
	if !cc.console.svc.Presets().Contains(mod) {
		return consoleResult{}, cc.session.fail(fmt.Sprintf("There is no %+d button; use roll %+d instead.", mod, mod))
	}
	rec, err := cc.console.svc.Roll2D6(cc.ctx, mod)
	return showRecord(cc, rec, err)
}

// consoleModPage shows a page of modifier buttons: "mods", "mods 3",
// "mods next", "mods prev".
func consoleModPage(cc *consoleContext) (consoleResult, error) {
	set := cc.console.svc.Presets()
	pages := len(set.Pages())
	s := cc.session
	switch arg := cc.parsed.Arg(0); arg {
	case "":
	case "next", ">":
		s.modPage = min(s.modPage+1, pages-1)
	case "prev", "<":
		s.modPage = max(s.modPage-1, 0)
	default:
		n, err := cc.parsed.IntArg(0, 1)
		if err != nil {
			return usage(cc)
		}
		s.modPage = max(0, min(n-1, pages-1))
	}
	return consoleResult{}, s.write(RenderModPage(set, s.modPage)...)
}

// consoleSingle rolls one die from the single-die selector range.
func consoleSingle(cc *consoleContext) (consoleResult, error) {
	sides, err := cc.parsed.IntArg(0, 0)
	if err != nil || len(cc.parsed.Args) != 1 {
		return usage(cc)
	}
	lo, hi := cc.console.svc.Presets().SingleDieRange()
	if sides < lo || sides > hi {
		return consoleResult{}, cc.session.fail(fmt.Sprintf("Choose a die from 1d%d to 1d%d.", lo, hi))
	}
	rec, err := cc.console.svc.RollSingle(cc.ctx, sides)
	if errors.Is(err, tabletop.ErrInvalidSides) {
		return consoleResult{}, cc.session.fail(err.Error())
	}
	return showRecord(cc, rec, err)
}

// consoleStructured rolls "custom <count> <sides> [modifier]", reading the
// values leniently the way the form fields do.
func consoleStructured(cc *consoleContext) (consoleResult, error) {
	if len(cc.parsed.Args) < 2 {
		return usage(cc)
	}
	rec, err := cc.console.svc.RollStructured(cc.ctx, cc.parsed.Arg(0), cc.parsed.Arg(1), cc.parsed.Arg(2))
	return showRecord(cc, rec, err)
}

// consoleExpression rolls free-form, comma-separated expressions.
func consoleExpression(cc *consoleContext) (consoleResult, error) {
	if cc.parsed.RawArgs == "" {
		return usage(cc)
	}
	recs, storeErr := cc.console.svc.RollCustom(cc.ctx, cc.parsed.RawArgs)
	if len(recs) == 0 {
		return usage(cc)
	}
	// The last segment is newest, so record i sits at index len-1-i.
	var lines []string
	for i := len(recs) - 1; i >= 0; i-- {
		lines = append(lines, RenderRecord(len(recs)-1-i, recs[i])...)
	}
	if err := cc.session.write(lines...); err != nil {
		return consoleResult{}, err
	}
	return consoleResult{}, cc.session.reportStoreError(storeErr)
}

func consoleLog(cc *consoleContext) (consoleResult, error) {
	return consoleResult{}, cc.session.write(RenderLog(cc.console.svc.Log(cc.ctx))...)
}

// consoleDelete removes one entry by its current index, then reprints the
// log since every later index shifts.
func consoleDelete(cc *consoleContext) (consoleResult, error) {
	if len(cc.parsed.Args) != 1 {
		return usage(cc)
	}
	idx, err := cc.parsed.IntArg(0, 0)
	if err != nil {
		return usage(cc)
	}
	removed, err := cc.console.svc.DeleteRecord(cc.ctx, idx)
	if err != nil {
		return consoleResult{}, cc.session.reportStoreError(err)
	}
	if !removed {
		return consoleResult{}, cc.session.fail(fmt.Sprintf("No entry [%d].", idx))
	}
	lines := append([]string{telnet.Colorize(fmt.Sprintf("Deleted entry [%d].", idx), telnet.Yellow)}, RenderLog(cc.console.svc.Log(cc.ctx))...)
	return consoleResult{}, cc.session.write(lines...)
}

// consoleClear empties the log after confirmation.
func consoleClear(cc *consoleContext) (consoleResult, error) {
	ok, err := cc.session.confirm("Delete the entire roll log?")
	if err != nil {
		return consoleResult{}, err
	}
	if !ok {
		return consoleResult{}, cc.session.write(telnet.Colorize("Kept the log.", telnet.Dim))
	}
	if err := cc.session.reportStoreError(cc.console.svc.ClearAll(cc.ctx)); err != nil {
		return consoleResult{}, err
	}
	return consoleResult{}, cc.session.write(telnet.Colorize("Roll log cleared.", telnet.Yellow))
}

func consoleHelp(cc *consoleContext) (consoleResult, error) {
	return consoleResult{}, cc.session.write(RenderHelp(cc.registry)...)
}

func consoleQuit(cc *consoleContext) (consoleResult, error) {
	_ = cc.session.write(telnet.Colorize("Goodbye!", telnet.Cyan))
	return consoleResult{quit: true}, nil
}
