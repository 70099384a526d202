package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/game/command"
	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
)

// Badges returns the highlight labels for r in display order: CRITICAL or
// FUMBLE, then DOUBLE, then the streak count.
func Badges(r rolllog.Record) []string {
	var out []string
	switch {
	case r.Critical():
		out = append(out, telnet.Colorize("CRITICAL", telnet.Bold, telnet.BrightYellow))
	case r.Fumble():
		out = append(out, telnet.Colorize("FUMBLE", telnet.Bold, telnet.BrightRed))
	}
	if r.Double() {
		out = append(out, telnet.Colorize("DOUBLE", telnet.Magenta))
	}
	if r.Repeated() {
		out = append(out, telnet.Colorize(fmt.Sprintf("%d in a row", r.Streak), telnet.Cyan))
	}
	return out
}

// RenderRecord formats the record at log position index as two lines.
//
//	[0] 2d6+3  CRITICAL DOUBLE
//	    6 + 6 + 3   raw 12  total 15   2026/10/15 09:05:03
func RenderRecord(index int, r rolllog.Record) []string {
	head := fmt.Sprintf("%s %s", telnet.Colorize(fmt.Sprintf("[%d]", index), telnet.BrightBlack), telnet.Colorize(r.Expression, telnet.Bold))
	if badges := Badges(r); len(badges) > 0 {
		head += "  " + strings.Join(badges, " ")
	}

	if !r.IsTwoD6() {
		values := make([]string, len(r.Dice))
		for i, d := range r.Dice {
			values[i] = d.String()
		}
		detail := fmt.Sprintf("    rolls: %s  total %s   %s",
			strings.Join(values, ", "),
			telnet.Colorize(fmt.Sprint(r.Total), telnet.Bold),
			telnet.Colorize(r.Timestamp, telnet.Dim),
		)
		if len(r.Dice) == 0 {
			detail = fmt.Sprintf("    (not a dice expression)   %s", telnet.Colorize(r.Timestamp, telnet.Dim))
		}
		return []string{head, detail}
	}

	faces := r.FaceValues()
	dieColor := telnet.White
	if r.Double() {
		dieColor = telnet.Magenta
	}
	var dice strings.Builder
	for i, f := range faces {
		if i > 0 {
			dice.WriteString(" + ")
		}
		dice.WriteString(telnet.Colorize(fmt.Sprint(f), telnet.Bold, dieColor))
	}
	if r.Modifier != 0 {
		fmt.Fprintf(&dice, " %+d", r.Modifier)
	}
	detail := fmt.Sprintf("    %s   raw %d  total %s   %s",
		dice.String(),
		r.RawTotal,
		telnet.Colorize(fmt.Sprint(r.Total), telnet.Bold),
		telnet.Colorize(r.Timestamp, telnet.Dim),
	)
	return []string{head, detail}
}

// RenderLog formats the whole log, newest first, with each record's
// current index.
func RenderLog(records []rolllog.Record) []string {
	if len(records) == 0 {
		return []string{telnet.Colorize("The roll log is empty.", telnet.Dim)}
	}
	lines := make([]string, 0, 2*len(records))
	for i, r := range records {
		lines = append(lines, RenderRecord(i, r)...)
	}
	return lines
}

// RenderModPage formats page (0-based) of the modifier presets with a
// pager line showing the current page.
func RenderModPage(set *preset.Set, page int) []string {
	p := set.Page(page)
	var buttons []string
	for _, m := range p.Modifiers() {
		buttons = append(buttons, fmt.Sprintf("%+d", m))
	}

	var pager strings.Builder
	for i, other := range set.Pages() {
		label := fmt.Sprintf(" %d ", i+1)
		if other == p {
			label = telnet.Colorize(fmt.Sprintf("[%d]", i+1), telnet.Bold, telnet.BrightCyan)
		}
		pager.WriteString(label)
	}

	return []string{
		telnet.Colorize(p.Title, telnet.Bold, telnet.BrightYellow),
		"  " + strings.Join(buttons, " "),
		"  pages:" + pager.String() + telnet.Colorize("  (mods <n> | mods next | mods prev; mod <value> rolls)", telnet.Dim),
	}
}

// RenderHelp lists the registry's commands by category.
func RenderHelp(registry *command.Registry) []string {
	byCat := registry.CommandsByCategory()
	var lines []string
	for _, cat := range []string{command.CategoryRoll, command.CategoryLog, command.CategorySystem} {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, telnet.Colorize(strings.ToUpper(cat[:1])+cat[1:], telnet.Bold, telnet.Cyan))
		for _, c := range cmds {
			lines = append(lines, fmt.Sprintf("  %s%-36s%s %s", telnet.Green, c.Usage, telnet.Reset, c.Help))
		}
	}
	return lines
}
