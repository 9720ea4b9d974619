package domain

import "fmt"

// batchTransitions is the full transition table for the batch lifecycle.
// ERROR is reachable from every non-terminal state and is handled in
// CanTransition rather than enumerated here.
var batchTransitions = map[BatchState][]BatchState{
	BatchStateUploaded:         {BatchStateProcessingSplit},
	BatchStateProcessingSplit:  {BatchStateSplitProposed, BatchStateProcessingFailed},
	BatchStateSplitProposed:    {BatchStateSplitValidated, BatchStateProcessingSplit},
	BatchStateSplitValidated:   {BatchStateExtractingData},
	BatchStateExtractingData:   {BatchStateDataValidationPending},
	BatchStateProcessingFailed: {BatchStateProcessingSplit},
}

// ProcessableStates are the states from which split processing may start.
var ProcessableStates = []BatchState{
	BatchStateUploaded,
	BatchStateSplitProposed,
	BatchStateProcessingFailed,
}

// CanTransition reports whether moving from one batch state to another is
// allowed by the lifecycle table.
func CanTransition(from, to BatchState) bool {
	if to == BatchStateError {
		return !from.IsTerminal()
	}
	for _, next := range batchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a state change on the batch.
func (b *Batch) Transition(to BatchState) error {
	if !CanTransition(b.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.State, to)
	}
	b.State = to
	return nil
}

// CanStartProcessing reports whether split processing may start from the
// batch's current state.
func (b *Batch) CanStartProcessing() bool {
	for _, s := range ProcessableStates {
		if b.State == s {
			return true
		}
	}
	return false
}
