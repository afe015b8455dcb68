// Package requestflow defines the shared lifecycle for blood request
// workflows. The donor-initiated and hospital-initiated flows run the same
// state machine; only the actors and the ledger side effect differ.
package requestflow

// Status of a request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Kind tags which flow a request belongs to.
type Kind string

const (
	KindDonor    Kind = "donor"    // donor -> organisation, completion posts an IN entry
	KindHospital Kind = "hospital" // hospital -> organisation, approval posts an OUT entry
)

// transitions holds every legal edge. Anything absent is forbidden, which
// makes rejected/cancelled/completed terminal by construction.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known status.
func Valid(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
