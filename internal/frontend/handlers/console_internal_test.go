package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/dicetool/internal/game/command"
)

func TestEveryCommandHasConsoleHandler(t *testing.T) {
	for _, c := range command.DefaultRegistry().Commands() {
		_, ok := consoleHandlerMap[c.Handler]
		assert.True(t, ok, "command %q (handler %q) is not wired", c.Name, c.Handler)
	}
}

func TestEveryConsoleHandlerIsReachable(t *testing.T) {
	used := make(map[string]bool)
	for _, c := range command.DefaultRegistry().Commands() {
		used[c.Handler] = true
	}
	for name := range consoleHandlerMap {
		assert.True(t, used[name], "handler %q has no command", name)
	}
}
