package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// RegisterModules registers the warband.* Lua table into L:
//
//	warband.log(msg)       logs msg at info level
//	warband.roll(expr)     rolls a dice expression, returns the total or nil
//	warband.random()       returns a float in [0, 1)
//	warband.unit(id)       returns a unit snapshot table or nil
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the warband global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(m.luaLog))
	L.SetField(mod, "roll", L.NewFunction(m.luaRoll))
	L.SetField(mod, "random", L.NewFunction(m.luaRandom))
	L.SetField(mod, "unit", L.NewFunction(m.luaUnit))
	L.SetGlobal("warband", mod)
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr, err := dice.Parse(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(m.roller.Roll(expr).Total()))
	return 1
}

func (m *Manager) luaRandom(L *lua.LState) int {
	L.Push(lua.LNumber(m.roller.Float64()))
	return 1
}

func (m *Manager) luaUnit(L *lua.LState) int {
	id := L.CheckInt(1)
	if m.GetUnit == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetUnit(id)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(UnitTable(L, info))
	return 1
}

// UnitTable converts info into a Lua table with the fields id, name, civ,
// health, movement, q and r.
func UnitTable(L *lua.LState, info *UnitInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LNumber(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "civ", lua.LString(info.Civ))
	L.SetField(t, "health", lua.LNumber(info.Health))
	L.SetField(t, "movement", lua.LNumber(info.Movement))
	L.SetField(t, "q", lua.LNumber(info.Q))
	L.SetField(t, "r", lua.LNumber(info.R))
	return t
}
