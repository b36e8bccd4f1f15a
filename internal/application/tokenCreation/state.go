// internal/application/tokenCreation/state.go
package tokenCreation

import (
	"fmt"
	"log"
	"time"

	"tokenforge/internal/infra/metrics"
)

// State はワークフロー 1 回分の状態です。
type State string

const (
	StateIdle                  State = "Idle"
	StateValidating            State = "Validating"
	StateUploadingMetadata     State = "UploadingMetadata"
	StateAssemblingTransaction State = "AssemblingTransaction"
	StateAwaitingSignature     State = "AwaitingSignature"
	StateConfirming            State = "Confirming"
	StateSucceeded             State = "Succeeded"
	StateFailed                State = "Failed"
)

var stateOrder = map[State]int{
	StateIdle:                  0,
	StateValidating:            1,
	StateUploadingMetadata:     2,
	StateAssemblingTransaction: 3,
	StateAwaitingSignature:     4,
	StateConfirming:            5,
	StateSucceeded:             6,
	StateFailed:                6,
}

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// run は状態遷移を前進のみに制限します。Failed / Succeeded からは抜けられません。
type run struct {
	op       string
	state    State
	entered  time.Time
	observer StateObserver
	history  []State
}

func newRun(op string, observer StateObserver) *run {
	return &run{
		op:       op,
		state:    StateIdle,
		entered:  time.Now(),
		observer: observer,
		history:  []State{StateIdle},
	}
}

func (r *run) advance(to State) error {
	from := r.state
	if from.Terminal() {
		return fmt.Errorf("token_workflow: illegal transition %s -> %s (terminal)", from, to)
	}
	if to != StateFailed && stateOrder[to] <= stateOrder[from] {
		return fmt.Errorf("token_workflow: illegal transition %s -> %s", from, to)
	}

	metrics.ObserveStage(string(from), r.entered)
	r.state = to
	r.entered = time.Now()
	r.history = append(r.history, to)

	log.Printf("[token_workflow] op=%s state %s -> %s", r.op, from, to)
	if r.observer != nil {
		r.observer(from, to)
	}
	return nil
}

// must は実装上ありえない遷移をパニックにします（呼び出し順のバグ検出用）。
func (r *run) must(to State) {
	if err := r.advance(to); err != nil {
		panic(err)
	}
}

func (r *run) fail() {
	if r.state.Terminal() {
		return
	}
	r.must(StateFailed)
}
