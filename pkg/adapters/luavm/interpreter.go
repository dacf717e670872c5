// Package luavm embeds a Lua 5.2 virtual machine as a story interpreter.
//
// A story script declares its narrative variables as top-level globals and its
// knots as global functions. Booleans, numbers and strings are shared by
// value; any other global (a table, say) is reported by its type name and
// cannot be overwritten from the host:
//
//	reputation = 0
//	met_guard = false
//
//	function gate()
//	  say("The guard eyes you.")
//	  reputation = reputation + 1
//	end
//
// After the top level runs, the declared globals move into a shadow table and
// the global table gets a metatable that routes reads and writes through it,
// so every assignment the story makes is observed.
package luavm

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/Shopify/go-lua"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/ports"
)

const shadowKey = "colloquy.shadow"

// Interpreter implements ports.StoryInterpreter on github.com/Shopify/go-lua.
// It is not safe for concurrent use.
type Interpreter struct {
	state   *lua.State
	logger  *slog.Logger
	loaded  bool
	tracked map[string]bool
	lines   []string

	observers map[int]func(string, any)
	nextObs   int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger for script diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// New creates an interpreter with the standard libraries and the say builtin.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		state:     lua.NewState(),
		logger:    logging.NewNop(),
		tracked:   make(map[string]bool),
		observers: make(map[int]func(string, any)),
	}
	for _, opt := range opts {
		opt(i)
	}
	lua.OpenLibraries(i.state)
	i.state.Register("say", i.say)
	return i
}

// NewFactory returns a factory producing interpreters configured with opts.
func NewFactory(opts ...Option) ports.InterpreterFactory {
	return ports.InterpreterFactoryFunc(func() (ports.StoryInterpreter, error) {
		return New(opts...), nil
	})
}

func (i *Interpreter) say(l *lua.State) int {
	text := lua.CheckString(l, 1)
	i.lines = append(i.lines, text)
	return 0
}

func (i *Interpreter) usable() error {
	if i.state == nil {
		return fmt.Errorf("interpreter is closed")
	}
	return nil
}

// Load runs the top level of source and starts tracking the globals it declared.
func (i *Interpreter) Load(source string) error {
	if err := i.usable(); err != nil {
		return err
	}
	if i.loaded {
		return fmt.Errorf("interpreter already loaded")
	}
	l := i.state

	baseline := make(map[string]bool)
	l.PushGlobalTable()
	l.PushNil()
	for l.Next(-2) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			baseline[key] = true
		}
		l.Pop(1)
	}
	l.Pop(1)

	if err := lua.LoadString(l, source); err != nil {
		l.SetTop(0)
		return fmt.Errorf("load story: %w", err)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		l.SetTop(0)
		return fmt.Errorf("run story: %w", err)
	}

	// Move declared scalars from _G into the shadow table.
	l.NewTable()
	shadow := l.AbsIndex(-1)
	l.PushGlobalTable()
	globals := l.AbsIndex(-1)
	var names []string
	l.PushNil()
	for l.Next(globals) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			if !baseline[key] && l.TypeOf(-1) != lua.TypeFunction {
				names = append(names, key)
			}
		}
		l.Pop(1)
	}
	for _, name := range names {
		l.Field(globals, name)
		l.SetField(shadow, name)
		l.PushNil()
		l.SetField(globals, name)
		i.tracked[name] = true
	}

	l.NewTable()
	l.PushValue(shadow)
	l.SetField(-2, "__index")
	l.PushGoFunction(i.newIndex)
	l.SetField(-2, "__newindex")
	l.SetMetaTable(globals)
	l.Pop(1)

	l.SetField(lua.RegistryIndex, shadowKey)
	i.loaded = true

	sort.Strings(names)
	i.logger.Debug("Story loaded", "globals", names)
	return nil
}

// newIndex runs for every assignment to a global absent from _G itself.
func (i *Interpreter) newIndex(l *lua.State) int {
	if l.TypeOf(2) == lua.TypeString {
		name, _ := l.ToString(2)
		if i.tracked[name] {
			l.Field(lua.RegistryIndex, shadowKey)
			l.PushValue(3)
			l.SetField(-2, name)
			l.Pop(1)
			i.notify(name, toGo(l, 3))
			return 0
		}
	}
	l.PushValue(2)
	l.PushValue(3)
	l.RawSet(1)
	return 0
}

func (i *Interpreter) notify(name string, value any) {
	ids := make([]int, 0, len(i.observers))
	for id := range i.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := i.observers[id]; ok {
			fn(name, value)
		}
	}
}

// Globals returns the declared globals and their current values.
func (i *Interpreter) Globals() map[string]any {
	out := make(map[string]any, len(i.tracked))
	for name := range i.tracked {
		if v, ok := i.Get(name); ok {
			out[name] = v
		}
	}
	return out
}

// Get returns a declared global.
func (i *Interpreter) Get(name string) (any, bool) {
	if i.state == nil || !i.tracked[name] {
		return nil, false
	}
	l := i.state
	l.Field(lua.RegistryIndex, shadowKey)
	l.Field(-1, name)
	v := toGo(l, -1)
	l.Pop(2)
	return v, true
}

// Set writes a declared global. Observers are not notified.
func (i *Interpreter) Set(name string, value any) error {
	if err := i.usable(); err != nil {
		return err
	}
	if !i.tracked[name] {
		return fmt.Errorf("story has no global %q", name)
	}
	l := i.state
	l.Field(lua.RegistryIndex, shadowKey)
	l.Field(-1, name)
	current, typeName := l.TypeOf(-1), lua.TypeNameOf(l, -1)
	l.Pop(1)
	if current != lua.TypeNil && !isScalar(current) {
		l.Pop(1)
		return fmt.Errorf("set %s: global is a %s", name, typeName)
	}
	if err := pushGo(l, value); err != nil {
		l.Pop(1)
		return fmt.Errorf("set %s: %w", name, err)
	}
	l.SetField(-2, name)
	l.Pop(1)
	return nil
}

// Observe registers fn for story-side writes to declared globals.
func (i *Interpreter) Observe(fn func(name string, value any)) func() {
	id := i.nextObs
	i.nextObs++
	i.observers[id] = fn
	return func() {
		delete(i.observers, id)
	}
}

// Run calls the global function named label.
func (i *Interpreter) Run(label string) error {
	if err := i.usable(); err != nil {
		return err
	}
	if !i.loaded {
		return fmt.Errorf("run %s: no story loaded", label)
	}
	l := i.state
	l.Global(label)
	if l.TypeOf(-1) != lua.TypeFunction {
		l.Pop(1)
		return fmt.Errorf("story has no label %q", label)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		l.SetTop(0)
		return fmt.Errorf("run %s: %w", label, err)
	}
	return nil
}

// Lines returns every line passed to say so far.
func (i *Interpreter) Lines() []string {
	out := make([]string, len(i.lines))
	copy(out, i.lines)
	return out
}

// Close drops the VM. Further calls fail; Close itself may be repeated.
func (i *Interpreter) Close() error {
	i.state = nil
	clear(i.observers)
	return nil
}

func isScalar(t lua.Type) bool {
	return t == lua.TypeBoolean || t == lua.TypeNumber || t == lua.TypeString
}

// toGo converts the value at index. Whole numbers become int64, others float64.
func toGo(l *lua.State, index int) any {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return nil
	case lua.TypeBoolean:
		return l.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return normalizeNumber(n)
	case lua.TypeString:
		s, _ := l.ToString(index)
		return s
	default:
		return lua.TypeNameOf(l, index)
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) <= 1<<53 {
		return int64(value)
	}
	return value
}

func pushGo(l *lua.State, value any) error {
	switch v := value.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case int:
		l.PushInteger(v)
	case int64:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case string:
		l.PushString(v)
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	return nil
}
