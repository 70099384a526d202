package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dicetool/internal/config"
	"github.com/cory-johannsen/dicetool/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetool/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetool/internal/game/command"
	"github.com/cory-johannsen/dicetool/internal/game/dice"
	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
	"github.com/cory-johannsen/dicetool/internal/storage/memory"
	"github.com/cory-johannsen/dicetool/internal/tabletop"
	"github.com/cory-johannsen/dicetool/internal/testutil"
)

const prompt = "dice> "

// startConsole serves a console over a scripted source and returns a
// connected client that has read the first prompt.
func startConsole(t *testing.T, faces ...int) (*testutil.TelnetClient, *tabletop.Service) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := tabletop.NewService(
		dice.NewLoggedRoller(dice.NewScriptedSource(faces...), logger),
		rolllog.NewStore(memory.NewBackend(), rolllog.DefaultKey, logger),
		preset.Default(),
		tabletop.Options{
			TimestampLayout: "2006/1/2 15:04:05",
			MaxCount:        100,
			MaxSides:        1000,
			Now:             func() time.Time { return time.Date(2026, 10, 15, 9, 5, 3, 0, time.UTC) },
		},
		logger,
	)
	return serveConsole(t, svc), svc
}

// serveConsole serves svc and returns a connected client that has read the
// first prompt.
func serveConsole(t *testing.T, svc handlers.RollService) *testutil.TelnetClient {
	t.Helper()
	logger := zaptest.NewLogger(t)
	console := handlers.NewConsole(svc, command.DefaultRegistry(), "test-table", logger)

	acc := telnet.NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, console, logger)
	go func() { _ = acc.ListenAndServe() }()
	require.Eventually(t, func() bool {
		return acc.IsRunning() && acc.Addr() != ""
	}, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = acc.Stop(ctx)
	})

	client := testutil.NewTelnetClient(t, acc.Addr())
	banner := client.Expect(prompt)
	assert.Contains(t, banner, "test-table")
	return client
}

// staleLogService answers Log from a fixed snapshot, as if another session
// changed the log after it was read.
type staleLogService struct {
	*tabletop.Service
	snapshot []rolllog.Record
}

func (s staleLogService) Log(context.Context) []rolllog.Record { return s.snapshot }

func TestConsole_Roll2D6AndStreak(t *testing.T) {
	client, svc := startConsole(t, 3, 4)

	out := client.SendAndExpect("roll", prompt)
	assert.Contains(t, out, "[0] 2d6")
	assert.Contains(t, out, "3 + 4   raw 7  total 7   2026/10/15 09:05:03")

	out = client.SendAndExpect("2d6 +2", prompt)
	assert.Contains(t, out, "[0] 2d6+2  2 in a row")
	assert.Contains(t, out, "raw 7  total 9")

	out = client.SendAndExpect("roll -1", prompt)
	assert.Contains(t, out, "3 in a row")
	assert.Contains(t, out, "total 6")

	log := svc.Log(context.Background())
	require.Len(t, log, 3)
	assert.Equal(t, 3, log[0].Streak)
}

func TestConsole_RollRejectsNonNumericModifier(t *testing.T) {
	client, svc := startConsole(t, 3, 4)
	out := client.SendAndExpect("roll lots", prompt)
	assert.Contains(t, out, "Usage: roll [+/-modifier]")
	assert.Empty(t, svc.Log(context.Background()))
}

func TestConsole_PresetModifiers(t *testing.T) {
	client, svc := startConsole(t, 2, 5)

	out := client.SendAndExpect("mod 2", prompt)
	assert.Contains(t, out, "There is no +2 button")

	out = client.SendAndExpect("m +5", prompt)
	assert.Contains(t, out, "[0] 2d6+5")
	assert.Contains(t, out, "total 12")
	assert.Len(t, svc.Log(context.Background()), 1)
}

func TestConsole_ModifierPages(t *testing.T) {
	client, _ := startConsole(t, 1)

	assert.Contains(t, client.SendAndExpect("mods", prompt), "+3〜+20")
	assert.Contains(t, client.SendAndExpect("mods next", prompt), "+21〜+40")
	assert.Contains(t, client.SendAndExpect("mods 5", prompt), "+81〜+100")
	assert.Contains(t, client.SendAndExpect("mods next", prompt), "+81〜+100", "stays on the last page")
	assert.Contains(t, client.SendAndExpect("mods prev", prompt), "+61〜+80")
	assert.Contains(t, client.SendAndExpect("mods 0", prompt), "+3〜+20")
}

func TestConsole_SingleDie(t *testing.T) {
	client, _ := startConsole(t, 5)

	assert.Contains(t, client.SendAndExpect("d 200", prompt), "Choose a die from 1d1 to 1d100.")
	assert.Contains(t, client.SendAndExpect("d", prompt), "Usage: d <sides>")

	out := client.SendAndExpect("d 6", prompt)
	assert.Contains(t, out, "[0] 1d6")
	assert.Contains(t, out, "rolls: 5  total 5")
}

func TestConsole_StructuredAndExpressions(t *testing.T) {
	client, svc := startConsole(t, 2)

	out := client.SendAndExpect("custom 3 6 -1", prompt)
	assert.Contains(t, out, "[0] 3d6-1")
	assert.Contains(t, out, "rolls: 2, 2, 2, (-1)  total 5")

	out = client.SendAndExpect("r 1d20+1, hello", prompt)
	assert.Contains(t, out, "[0] hello")
	assert.Contains(t, out, "[1] 1d20+1")

	log := svc.Log(context.Background())
	require.Len(t, log, 3)
	assert.Equal(t, "hello", log[0].Expression)
	assert.Equal(t, "1d20+1", log[1].Expression)
}

func TestConsole_DeleteAndClear(t *testing.T) {
	client, svc := startConsole(t, 3, 4)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		client.SendAndExpect("roll", prompt)
	}

	assert.Contains(t, client.SendAndExpect("del 99", prompt), "No entry [99].")
	assert.Contains(t, client.SendAndExpect("del x", prompt), "Usage: del <index>")
	require.Len(t, svc.Log(ctx), 3)

	out := client.SendAndExpect("del 0", prompt)
	assert.Contains(t, out, "Deleted entry [0].")
	assert.Contains(t, out, "[1] 2d6")
	assert.NotContains(t, out, "[2]")
	require.Len(t, svc.Log(ctx), 2)

	client.SendAndExpect("clear", "(yes/no)")
	assert.Contains(t, client.SendAndExpect("no", prompt), "Kept the log.")
	require.Len(t, svc.Log(ctx), 2)

	client.SendAndExpect("clear", "(yes/no)")
	assert.Contains(t, client.SendAndExpect("yes", prompt), "Roll log cleared.")
	assert.Empty(t, svc.Log(ctx))
	assert.Contains(t, client.SendAndExpect("log", prompt), "The roll log is empty.")
}

func TestConsole_DeleteReportsWhatTheStoreRemoved(t *testing.T) {
	ctx := context.Background()
	_, svc := startConsole(t, 3, 4)
	for i := 0; i < 3; i++ {
		_, err := svc.Roll2D6(ctx, 0)
		require.NoError(t, err)
	}
	stale := staleLogService{Service: svc, snapshot: svc.Log(ctx)}
	for i := 0; i < 2; i++ {
		_, err := svc.DeleteRecord(ctx, 0)
		require.NoError(t, err)
	}

	client := serveConsole(t, stale)
	out := client.SendAndExpect("del 2", prompt)
	assert.Contains(t, out, "No entry [2].")
	assert.NotContains(t, out, "Deleted entry")
	assert.Len(t, svc.Log(ctx), 1)
}

func TestConsole_UnknownCommandHelpAndQuit(t *testing.T) {
	client, _ := startConsole(t, 1)

	assert.Contains(t, client.SendAndExpect("bogus", prompt), `Unknown command "bogus"`)

	help := client.SendAndExpect("?", prompt)
	assert.Contains(t, help, "custom <count> <sides> [modifier]")
	assert.Contains(t, help, "del <index>")

	// Blank lines just reprompt.
	client.SendAndExpect("", prompt)

	client.SendAndExpect("quit", "Goodbye!")
	client.WaitClosed(2 * time.Second)
}
