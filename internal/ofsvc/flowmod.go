package ofsvc

import "fmt"

// A FlowMod describes one flow entry to program into a switch table. It is
// the core's conceptual shadow of a FlowEntry (spec data model); it is
// never persisted by the core itself, only sent through SwitchService and
// mirrored in an installer's own shadow table for diffing.
type FlowMod struct {
	Table       uint8
	Priority    uint16
	Match       []Match
	Actions     []Action
	IdleTimeout uint16
	HardTimeout uint16
}

// Key returns a string that uniquely identifies this flow entry's
// (table, match) identity, independent of priority/actions/timeouts. Two
// FlowMods addressed to the same switch with the same Key refer to the
// same conceptual rule, which is what "any existing entry with the same
// match is removed" (idempotent replace) keys off of.
func (f FlowMod) Key() string {
	return fmt.Sprintf("table=%d,%s", f.Table, MatchKey(f.Match))
}

func (f FlowMod) String() string {
	actions := ""
	for i, a := range f.Actions {
		if i > 0 {
			actions += ","
		}
		actions += a.String()
	}
	return fmt.Sprintf("priority=%d,%stable=%d,idle_timeout=%d,hard_timeout=%d,actions=%s",
		f.Priority, MatchKey(f.Match), f.Table, f.IdleTimeout, f.HardTimeout, actions)
}
