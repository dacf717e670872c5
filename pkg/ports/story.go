package ports

// StoryInterpreter is an embedded narrative interpreter with a global variable
// table that the bridge can read, write and observe.
//
// Global values are Go scalars: bool, int64, float64 or string. Other values
// are reported by Get and Globals as a string naming their type, and Set
// refuses to overwrite them.
type StoryInterpreter interface {
	// Load compiles and runs the top level of source, declaring its globals.
	Load(source string) error

	// Globals returns a snapshot of the declared global variables.
	Globals() map[string]any

	// Get returns the current value of a declared global.
	Get(name string) (any, bool)

	// Set writes a declared global without notifying observers.
	Set(name string, value any) error

	// Observe registers fn to be called whenever the story itself writes a
	// declared global. The returned function unsubscribes.
	Observe(fn func(name string, value any)) (cancel func())

	// Run starts the story at label and runs until it yields or finishes.
	Run(label string) error

	// Lines returns the text the story has emitted so far.
	Lines() []string

	// Close releases the interpreter. It is safe to call more than once.
	Close() error
}

// InterpreterFactory creates fresh interpreters.
type InterpreterFactory interface {
	NewInterpreter() (StoryInterpreter, error)
}

// InterpreterFactoryFunc adapts a function to InterpreterFactory.
type InterpreterFactoryFunc func() (StoryInterpreter, error)

// NewInterpreter calls f.
func (f InterpreterFactoryFunc) NewInterpreter() (StoryInterpreter, error) {
	return f()
}
