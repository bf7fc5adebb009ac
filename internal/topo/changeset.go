package topo

// A ChangeKind enumerates the downstream recomputation a Store mutation
// requires.
type ChangeKind int

// ChangeKind values.
const (
	// ChangeNone indicates the mutation was a no-op (idempotent replay or a
	// value identical to what was already stored).
	ChangeNone ChangeKind = iota
	// ChangeTopology indicates the switch/link graph changed and the
	// shortest-path table must be recomputed, followed by a full sweep.
	ChangeTopology
	// ChangeHost indicates a single host's routing-relevant state changed;
	// only that host needs to be reconciled.
	ChangeHost
)

// A ChangeSet is returned by every Store mutator, tagging which downstream
// recomputation (if any) the mutation requires.
type ChangeSet struct {
	Kind ChangeKind
	// Host holds the device key of the affected host when Kind ==
	// ChangeHost.
	Host string
}

func (c ChangeSet) String() string {
	switch c.Kind {
	case ChangeTopology:
		return "TOPO_CHANGED"
	case ChangeHost:
		return "HOST_CHANGED(" + c.Host + ")"
	default:
		return "NONE"
	}
}
