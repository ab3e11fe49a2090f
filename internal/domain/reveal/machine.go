package reveal

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State ids must stay untyped string constants for statekit.StateID.
const (
	stateIdle        = "idle"
	stateRevealing   = "revealing"
	stateAllRevealed = "all_revealed"
	stateTornDown    = "torn_down"
)

const (
	eventStart    = "start"
	eventComplete = "complete"
	eventTeardown = "teardown"
)

// Phase is the coarse state of a reveal session.
type Phase string

// Session phases.
const (
	PhaseIdle        Phase = stateIdle
	PhaseRevealing   Phase = stateRevealing
	PhaseAllRevealed Phase = stateAllRevealed
	PhaseTornDown    Phase = stateTornDown
)

type phaseContext struct {
	Items int
}

// phaseMachine holds the session phase. Idle -> Revealing -> AllRevealed,
// with teardown reachable from every phase.
type phaseMachine struct {
	interpreter *statekit.Interpreter[phaseContext]
}

func newPhaseMachine(items int) (*phaseMachine, error) {
	builder := statekit.NewMachine[phaseContext]("reveal-session").
		WithInitial(statekit.StateID(stateIdle)).
		WithContext(phaseContext{Items: items})

	builder.State(stateIdle).
		On(eventStart).Target(stateRevealing).
		On(eventTeardown).Target(stateTornDown).
		Done()

	builder.State(stateRevealing).
		On(eventComplete).Target(stateAllRevealed).
		On(eventTeardown).Target(stateTornDown).
		Done()

	builder.State(stateAllRevealed).
		On(eventTeardown).Target(stateTornDown).
		Done()

	builder.State(stateTornDown).
		On(eventTeardown).Target(stateTornDown).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMachine, err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &phaseMachine{interpreter: interpreter}, nil
}

// send fires event and reports whether the phase changed.
func (m *phaseMachine) send(event string) bool {
	before := m.current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return m.current() != before
}

func (m *phaseMachine) current() Phase {
	return Phase(m.interpreter.State().Value)
}
