package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/dice"
	"github.com/cory-johannsen/warband/internal/scripting"
)

func newTestManager(t testing.TB, limit int) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), logger)
	m := scripting.NewManager(roller, logger, limit)
	t.Cleanup(m.Close)
	return m, logs
}

func writeLua(t testing.TB, dir, filename, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0o644))
}

func TestManager_LoadScope_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := t.TempDir()
	writeLua(t, dir, "hooks.lua", `
		function on_damage(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadScope("Rome", dir))
	ret, err := mgr.CallHook("Rome", "on_damage", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingEverywhereIsNil(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	ret, err := mgr.CallHook("Nowhere", "on_damage")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_LoadTree_ScopeOverridesGlobal(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	root := t.TempDir()
	writeLua(t, root, "global.lua", `
		function which() return "global" end
		function only_global() return "g" end
	`)
	writeLua(t, filepath.Join(root, "Barbarians"), "barbs.lua", `
		function which() return "barbarians" end
	`)
	require.NoError(t, mgr.LoadTree(root))
	assert.Equal(t, []string{"Barbarians", scripting.GlobalScope}, mgr.Scopes())

	ret, _ := mgr.CallHook("Barbarians", "which")
	assert.Equal(t, lua.LString("barbarians"), ret)
	ret, _ = mgr.CallHook("Rome", "which")
	assert.Equal(t, lua.LString("global"), ret)
	// a scope without the hook falls back to the global VM
	ret, _ = mgr.CallHook("Barbarians", "only_global")
	assert.Equal(t, lua.LString("g"), ret)
}

func TestManager_LoadScope_BadDirFails(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	err := mgr.LoadScope("Rome", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestManager_LoadScope_SyntaxErrorFails(t *testing.T) {
	mgr, _ := newTestManager(t, 0)
	dir := t.TempDir()
	writeLua(t, dir, "broken.lua", `function (`)
	assert.Error(t, mgr.LoadScope("Rome", dir))
}

func TestManager_RuntimeErrorLoggedNotPropagated(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	dir := t.TempDir()
	writeLua(t, dir, "err.lua", `function boom() error("kaboom") end`)
	require.NoError(t, mgr.LoadScope(scripting.GlobalScope, dir))

	ret, err := mgr.CallHook("Rome", "boom")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_InstructionBudgetIsPerCall(t *testing.T) {
	mgr, logs := newTestManager(t, 1000)
	dir := t.TempDir()
	writeLua(t, dir, "loop.lua", `
		function spin() while true do end end
		function small() return 1 end
	`)
	require.NoError(t, mgr.LoadScope(scripting.GlobalScope, dir))

	ret, err := mgr.CallHook("", "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())

	// the exhausted budget does not poison later calls
	for i := 0; i < 5; i++ {
		ret, _ = mgr.CallHook("", "small")
		assert.Equal(t, lua.LNumber(1), ret)
	}
}

func TestManager_LoadScope_InfiniteTopLevelFails(t *testing.T) {
	mgr, _ := newTestManager(t, 100)
	dir := t.TempDir()
	writeLua(t, dir, "spin.lua", `while true do end`)
	assert.Error(t, mgr.LoadScope("Rome", dir))
}

func TestManager_WarbandModule(t *testing.T) {
	mgr, logs := newTestManager(t, 0)
	mgr.GetUnit = func(id int) *scripting.UnitInfo {
		if id != 7 {
			return nil
		}
		return &scripting.UnitInfo{ID: 7, Name: "Warrior", Civ: "Barbarians", Health: 40, Q: 1, R: 2}
	}
	dir := t.TempDir()
	writeLua(t, dir, "mod.lua", `
		function describe(id)
			local u = warband.unit(id)
			if u == nil then return "none" end
			warband.log(u.name .. "@" .. u.q .. "," .. u.r)
			return u.civ .. ":" .. u.health
		end
		function roll() return warband.roll("1d5+7") end
		function bad_roll() return warband.roll("garbage") end
		function rnd() return warband.random() end
	`)
	require.NoError(t, mgr.LoadScope(scripting.GlobalScope, dir))

	ret, _ := mgr.CallHook("", "describe", lua.LNumber(7))
	assert.Equal(t, lua.LString("Barbarians:40"), ret)
	assert.Equal(t, 1, logs.FilterMessage("lua").Len())
	ret, _ = mgr.CallHook("", "describe", lua.LNumber(8))
	assert.Equal(t, lua.LString("none"), ret)

	ret, _ = mgr.CallHook("", "roll")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int(n), 8)
	assert.LessOrEqual(t, int(n), 12)

	ret, _ = mgr.CallHook("", "bad_roll")
	assert.Equal(t, lua.LNil, ret)

	ret, _ = mgr.CallHook("", "rnd")
	f, ok := ret.(lua.LNumber)
	require.True(t, ok)
	assert.Less(t, float64(f), 1.0)
}

func TestProperty_InstructionLimitAlwaysStopsLoops(t *testing.T) {
	dir := t.TempDir()
	writeLua(t, dir, "spin.lua", `function spin() while true do end end`)
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(20, 200).Draw(rt, "limit")
		core, _ := observer.New(zap.DebugLevel)
		logger := zap.New(core)
		mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger, limit)
		defer mgr.Close()
		if err := mgr.LoadScope(scripting.GlobalScope, dir); err != nil {
			rt.Fatalf("load: %v", err)
		}
		ret, _ := mgr.CallHook("", "spin")
		if ret != lua.LNil {
			rt.Fatalf("expected nil return with limit=%d", limit)
		}
	})
}

func TestNewManager_PanicsOnNil(t *testing.T) {
	logger := zap.NewNop()
	assert.Panics(t, func() { scripting.NewManager(nil, logger, 0) })
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), logger)
	assert.Panics(t, func() { scripting.NewManager(roller, nil, 0) })
}
