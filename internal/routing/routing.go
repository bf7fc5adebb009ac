// Package routing computes the all-pairs next-hop table over a topology
// snapshot: unit-weight Dijkstra from every connected switch, with a fully
// deterministic tie-break so the same topology always yields the same
// table.
package routing

import (
	"container/heap"
	"sort"

	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// A NextHop is the forwarding decision at one switch for one destination
// switch: which port to send the packet out of to continue along a
// shortest path.
type NextHop struct {
	OutPort topo.PortNo
}

type routeKey struct {
	Src topo.SwitchID
	Dst topo.SwitchID
}

// A Table is an immutable (src, dst switch) -> NextHop mapping, the output
// of one Compute call. It never mutates in place; a topology change
// produces a brand new Table that atomically replaces the old one in the
// caller.
type Table struct {
	entries map[routeKey]NextHop
}

// NextHop returns the next hop to use at src in order to reach dst, and
// whether one exists (false if dst is unreachable from src in the
// topology the table was computed over, or if src == dst).
func (t Table) NextHop(src, dst topo.SwitchID) (NextHop, bool) {
	nh, ok := t.entries[routeKey{Src: src, Dst: dst}]
	return nh, ok
}

// adjacency is one directed edge discovered while building the per-source
// neighbor list used by Dijkstra.
type adjacency struct {
	to   topo.SwitchID
	port topo.PortNo
}

// neighborsOf returns, for every switch present and connected in snap, the
// directed edges leaving it, deduplicated to the smallest port when more
// than one edge reaches the same neighbor and sorted by (neighbor switch
// id ascending, port ascending) so that expansion order is deterministic.
func neighborsOf(snap topo.Snapshot) map[topo.SwitchID][]adjacency {
	best := make(map[topo.SwitchID]map[topo.SwitchID]topo.PortNo)

	for key, link := range snap.Links {
		srcSw, ok := snap.Switches[key.Src]
		if !ok || !srcSw.Connected {
			continue
		}
		dstSw, ok := snap.Switches[key.Dst]
		if !ok || !dstSw.Connected {
			continue
		}

		m, ok := best[key.Src]
		if !ok {
			m = make(map[topo.SwitchID]topo.PortNo)
			best[key.Src] = m
		}
		if cur, ok := m[key.Dst]; !ok || link.SrcPort < cur {
			m[key.Dst] = link.SrcPort
		}
	}

	out := make(map[topo.SwitchID][]adjacency, len(best))
	for src, m := range best {
		list := make([]adjacency, 0, len(m))
		for dst, port := range m {
			list = append(list, adjacency{to: dst, port: port})
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].to != list[j].to {
				return list[i].to < list[j].to
			}
			return list[i].port < list[j].port
		})
		out[src] = list
	}
	return out
}

// heapItem is one entry in the Dijkstra priority queue: (distance, switch
// id) ordering gives a deterministic distance-ascending,
// neighbor-switch-id-ascending tie-break.
type heapItem struct {
	sw   topo.SwitchID
	dist int
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].sw < pq[j].sw
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) {
	*pq = append(*pq, x.(heapItem))
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Compute runs unit-weight Dijkstra from every connected switch in snap and
// returns the resulting next-hop table. It is a pure function: snap is
// read-only and nothing outside the returned Table is mutated.
func Compute(snap topo.Snapshot) Table {
	adj := neighborsOf(snap)
	entries := make(map[routeKey]NextHop)

	sources := make([]topo.SwitchID, 0, len(snap.Switches))
	for id, sw := range snap.Switches {
		if sw.Connected {
			sources = append(sources, id)
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	for _, src := range sources {
		dist := map[topo.SwitchID]int{src: 0}
		firstHop := map[topo.SwitchID]topo.PortNo{}
		finalized := map[topo.SwitchID]bool{}

		pq := &priorityQueue{{sw: src, dist: 0}}
		heap.Init(pq)

		for pq.Len() > 0 {
			cur := heap.Pop(pq).(heapItem)
			if finalized[cur.sw] {
				continue
			}
			finalized[cur.sw] = true

			for _, e := range adj[cur.sw] {
				nd := dist[cur.sw] + 1
				if d, seen := dist[e.to]; seen && d <= nd {
					continue
				}
				dist[e.to] = nd
				if cur.sw == src {
					firstHop[e.to] = e.port
				} else {
					firstHop[e.to] = firstHop[cur.sw]
				}
				heap.Push(pq, heapItem{sw: e.to, dist: nd})
			}
		}

		for dst, port := range firstHop {
			entries[routeKey{Src: src, Dst: dst}] = NextHop{OutPort: port}
		}
	}

	return Table{entries: entries}
}
