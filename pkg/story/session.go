package story

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Owner says which side holds the source of truth for a shared variable.
type Owner int

const (
	// StoreOwned is the resting state: the variable store is authoritative.
	StoreOwned Owner = iota
	// InterpreterOwned holds while a session is open and the value was pushed in.
	InterpreterOwned
)

func (o Owner) String() string {
	if o == InterpreterOwned {
		return "interpreter"
	}
	return "store"
}

// Session is an open binding between a store and a running interpreter.
type Session struct {
	bridge *Bridge
	store  Store
	vm     ports.StoryInterpreter
	script string
	label  string

	owner  map[string]Owner
	types  map[string]domain.VariableType
	cancel func()
	ended  bool
}

func (s *Session) push(name string) {
	value, err := s.store.Get(name)
	if err != nil {
		s.bridge.skipped(name, err.Error())
		return
	}
	current, _ := s.vm.Get(name)
	if _, err := Convert(value.Type(), current); err != nil {
		s.owner[name] = StoreOwned
		s.bridge.skipped(name, fmt.Sprintf("script declares %s: %v", Infer(current).Type(), err))
		return
	}
	if err := s.vm.Set(name, value.Native()); err != nil {
		s.owner[name] = StoreOwned
		s.bridge.skipped(name, err.Error())
	}
}

// pull forwards one interpreter-side change into the store.
func (s *Session) pull(name string, native any) {
	if s.owner[name] != InterpreterOwned {
		s.bridge.logger.Debug("Story change ignored", "variable", name)
		return
	}
	value, err := Convert(s.types[name], native)
	if err != nil {
		s.bridge.skipped(name, err.Error())
		return
	}
	if err := s.store.Set(name, value); err != nil {
		s.bridge.skipped(name, err.Error())
	}
}

// Run continues the story at another label within the same session.
func (s *Session) Run(label string) error {
	if s.ended {
		return fmt.Errorf("story session already ended")
	}
	return s.vm.Run(label)
}

// Lines returns the text the story emitted so far.
func (s *Session) Lines() []string {
	return s.vm.Lines()
}

// Owner reports the current owner of a shared variable.
func (s *Session) Owner(name string) Owner {
	return s.owner[name]
}

// Tracked returns the shared variables the interpreter owns, sorted.
func (s *Session) Tracked() []string {
	var names []string
	for _, name := range sortedKeys(s.owner) {
		if s.owner[name] == InterpreterOwned {
			names = append(names, name)
		}
	}
	return names
}

// Ended reports whether End has run.
func (s *Session) Ended() bool {
	return s.ended
}

// End unsubscribes, pulls every owned variable one last time and closes the
// interpreter. Calling it again is a no-op.
func (s *Session) End() error {
	if s.ended {
		return nil
	}
	s.ended = true
	tracked := s.Tracked()

	if s.cancel != nil {
		s.cancel()
	}
	for _, name := range tracked {
		if native, ok := s.vm.Get(name); ok {
			s.pull(name, native)
		}
		s.owner[name] = StoreOwned
	}

	err := s.vm.Close()
	if s.bridge.hooks.OnSessionEnd != nil {
		event := s.event(domain.EventSessionEnd)
		event.Tracked = tracked
		s.bridge.hooks.OnSessionEnd(event)
	}
	s.bridge.logger.Debug("Story session ended", "script", s.script, "label", s.label)
	return err
}

func (s *Session) event(t domain.EventType) *domain.SessionEvent {
	return &domain.SessionEvent{
		EventBase: domain.NewEventBase(t),
		Script:    s.script,
		Label:     s.label,
		Tracked:   s.Tracked(),
	}
}
