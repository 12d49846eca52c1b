package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/adapters/driven/catalog"
	"github.com/custodia-labs/geovis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/services"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// testEnv holds the services wired for one test.
type testEnv struct {
	engine *services.Engine
	facade *services.Facade
}

// setupTestServices wires an engine over memory stores and installs it.
// When live is false the facade has no live source and every read falls
// back to the catalog.
func setupTestServices(t *testing.T, live bool) *testEnv {
	t.Helper()

	cfg := services.DefaultConfig()
	cfg.Now = func() time.Time { return testNow }

	engine := services.NewEngine(
		memory.NewQueryStore(),
		memory.NewRankingStore(),
		memory.NewSnapshotStore(),
		cfg,
	)

	fallback := catalog.NewAt(func() time.Time { return testNow })
	var f *services.Facade
	if live {
		f = services.NewFacade(engine, fallback, cfg)
	} else {
		f = services.NewFacade(nil, fallback, cfg)
	}

	SetServices(Services{
		Facade:       f,
		Queries:      engine.Queries(),
		Observations: engine.Observations(),
		LocalSource:  engine,
	})

	originalNow := now
	now = func() time.Time { return testNow }

	t.Cleanup(func() {
		SetServices(Services{})
		now = originalNow
		resetFlags(rootCmd)
	})

	return &testEnv{engine: engine, facade: f}
}

// createQuery registers a query directly through the engine.
func (e *testEnv) createQuery(t *testing.T, text string, brands ...string) *domain.VisibilityQuery {
	t.Helper()
	q, err := e.engine.Queries().Create(context.Background(), domain.QueryCreate{Text: text, Brands: brands})
	require.NoError(t, err)
	return q
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag in the tree to its default. Cobra keeps
// parsed values between Execute calls on the same command.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
	jsonOutput = false
	verbose = false
}
