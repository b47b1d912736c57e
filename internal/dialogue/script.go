package dialogue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/village"
)

// globalKey is the reserved key for shared scripts loaded via LoadGlobal.
// Reply falls back to this VM when a zone has no VM of its own.
const globalKey = "__global__"

// talkHook is the Lua entry point dialogue scripts define:
//
//	function on_talk(villager, note, message) ... return reply end
const talkHook = "on_talk"

// ErrNoReply reports that a responder has nothing to say for this villager;
// callers try the next responder in their chain.
var ErrNoReply = errors.New("dialogue: no reply")

// Turn is one utterance of a conversation.
type Turn struct {
	// Role is "player" or "villager".
	Role string `json:"role"`
	Text string `json:"text"`
}

// Turn roles.
const (
	RolePlayer   = "player"
	RoleVillager = "villager"
)

// Responder produces a villager's reply to a player message.
type Responder interface {
	// Reply returns the villager's next line. Implementations return
	// ErrNoReply (possibly wrapped) when they decline to answer, letting the
	// caller fall through to another backend.
	Reply(ctx context.Context, v village.Villager, message string, history []Turn) (string, error)
}

// ScriptEngine answers from authored Lua dialogue scripts. It owns one
// sandboxed LState per zone plus an optional global fallback VM.
//
// Invariant: the mutex serializes all VM access — LStates are not safe for
// concurrent use, so concurrent Reply calls queue.
type ScriptEngine struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limits map[string]int
	logger *zap.Logger
}

// NewScriptEngine creates an empty ScriptEngine.
//
// Precondition: logger must be non-nil.
func NewScriptEngine(logger *zap.Logger) *ScriptEngine {
	return &ScriptEngine{
		states: make(map[string]*lua.LState),
		limits: make(map[string]int),
		logger: logger,
	}
}

// LoadZone creates a sandboxed VM for zoneID and executes every *.lua file
// in scriptDir in lexicographic order.
//
// Precondition: zoneID must be non-empty; scriptDir must be a readable
// directory.
func (e *ScriptEngine) LoadZone(zoneID, scriptDir string, instLimit int) error {
	return e.loadInto(zoneID, scriptDir, instLimit)
}

// LoadGlobal creates the shared fallback VM used for zones without scripts
// of their own.
func (e *ScriptEngine) LoadGlobal(scriptDir string, instLimit int) error {
	return e.loadInto(globalKey, scriptDir, instLimit)
}

func (e *ScriptEngine) loadInto(key, scriptDir string, instLimit int) error {
	L := newSandboxedState()

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("dialogue: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, entry.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		cancel := withBudget(L, instLimit)
		err := L.DoFile(path)
		cancel()
		if err != nil {
			L.Close()
			return fmt.Errorf("dialogue: loading %q for %q: %w", path, key, err)
		}
	}

	e.mu.Lock()
	if old, ok := e.states[key]; ok {
		old.Close()
	}
	e.states[key] = L
	e.limits[key] = instLimit
	e.mu.Unlock()
	return nil
}

// Close shuts down every VM. The engine must not be used afterwards.
func (e *ScriptEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, L := range e.states {
		L.Close()
	}
	e.states = map[string]*lua.LState{}
	e.limits = map[string]int{}
}

// Reply invokes the on_talk hook in the villager's zone VM, falling back to
// the global VM. Each invocation runs under a fresh opcode budget. Returns
// ErrNoReply when no VM exists, the hook is not defined, or the hook returns
// nil or a non-string. Lua runtime errors are logged at Warn level and
// surface as ErrNoReply so a broken script never breaks a conversation.
func (e *ScriptEngine) Reply(_ context.Context, v village.Villager, message string, _ []Turn) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := v.ZoneID
	L, ok := e.states[key]
	if !ok {
		key = globalKey
		L = e.states[key]
	}
	if L == nil {
		return "", ErrNoReply
	}

	fn := L.GetGlobal(talkHook)
	if fn == lua.LNil {
		return "", ErrNoReply
	}

	cancel := withBudget(L, e.limits[key])
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(v.DisplayName), lua.LString(v.NotePath), lua.LString(message)); err != nil {
		e.logger.Warn("dialogue: Lua runtime error",
			zap.String("zone", v.ZoneID),
			zap.String("villager", v.ID),
			zap.Error(err),
		)
		return "", ErrNoReply
	}

	ret := L.Get(-1)
	L.Pop(1)
	if s, ok := ret.(lua.LString); ok && string(s) != "" {
		return string(s), nil
	}
	return "", ErrNoReply
}
