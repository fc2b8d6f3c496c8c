package install

import (
	"fmt"

	"github.com/stackabletech/stackable/internal/core/spec"
)

type State int

const (
	Created State = iota
	PrerequisitesChecked
	NamespacesReady
	ReleaseInstalled
	ReleaseSkipped
	StackManifestsInstalled
	DemoManifestsInstalled
	Done
	Failed
)

var stateNames = map[State]string{
	Created:                 "Created",
	PrerequisitesChecked:    "PrerequisitesChecked",
	NamespacesReady:         "NamespacesReady",
	ReleaseInstalled:        "ReleaseInstalled",
	ReleaseSkipped:          "ReleaseSkipped",
	StackManifestsInstalled: "StackManifestsInstalled",
	DemoManifestsInstalled:  "DemoManifestsInstalled",
	Done:                    "Done",
	Failed:                  "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Transition is one edge of the installation state machine. Err is set when
// To is Failed.
type Transition struct {
	Kind spec.Kind
	Name string
	From State
	To   State
	Err  error
}

type Observer interface {
	StateChanged(t Transition)
}

type ObserverFunc func(t Transition)

func (f ObserverFunc) StateChanged(t Transition) { f(t) }
