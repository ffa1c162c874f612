package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// GlobalScope is the reserved scope for scripts shared by every nation.
// CallHook falls back to it when the requested scope has no VM.
const GlobalScope = "__global__"

// UnitInfo is a snapshot of a unit passed to Lua callbacks.
type UnitInfo struct {
	ID       int
	Name     string
	Civ      string
	Health   int
	Movement int
	Q, R     int
}

// Manager owns one sandboxed LState per scope and dispatches hooks to them.
// A scope is a nation name; nation scripts override global ones.
//
// Manager is safe for concurrent CallHook after loading completes; calls
// into one scope are serialized.
type Manager struct {
	mu        sync.RWMutex
	states    map[string]*lua.LState
	locks     map[string]*sync.Mutex
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger

	// Injected after construction. nil = no-op in warband.* functions.
	GetUnit func(id int) *UnitInfo
}

// NewManager creates a Manager whose hooks run at most instLimit opcodes each.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		states:    make(map[string]*lua.LState),
		locks:     make(map[string]*sync.Mutex),
		instLimit: instLimit,
		roller:    roller,
		logger:    logger,
	}
}

// LoadTree loads root/*.lua into the global scope and every subdirectory
// root/<Nation>/*.lua into the scope named after it.
//
// Precondition: root must be a readable directory.
// Postcondition: Returns the first load error, leaving earlier scopes loaded.
func (m *Manager) LoadTree(root string) error {
	if err := m.LoadScope(GlobalScope, root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("scripting: reading script root %q: %w", root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadScope(e.Name(), filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadScope creates a sandboxed VM for scope, registers the warband module,
// then executes every *.lua file in scriptDir in lexicographic order. An
// existing VM for the scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
func (m *Manager) LoadScope(scope, scriptDir string) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		disarm := withBudget(L, m.instLimit)
		err := L.DoFile(path)
		disarm()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[scope]; ok {
		old.Close()
	}
	m.states[scope] = L
	if _, ok := m.locks[scope]; !ok {
		m.locks[scope] = &sync.Mutex{}
	}
	m.mu.Unlock()
	return nil
}

// Scopes returns the loaded scope names in sorted order.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.states))
	for k := range m.states {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global VM when the scope has none or does not define the hook. Returns
// (LNil, nil) if no VM defines the hook. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	for _, key := range []string{scope, GlobalScope} {
		m.mu.RLock()
		L, ok := m.states[key]
		lock := m.locks[key]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		lock.Lock()
		ret, found := m.call(L, key, hook, args)
		lock.Unlock()
		if found {
			return ret, nil
		}
		if key == GlobalScope {
			break
		}
	}
	return lua.LNil, nil
}

func (m *Manager) call(L *lua.LState, scope, hook string, args []lua.LValue) (lua.LValue, bool) {
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, false
	}
	disarm := withBudget(L, m.instLimit)
	defer disarm()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, true
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, true
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, L := range m.states {
		L.Close()
		delete(m.states, k)
	}
}
