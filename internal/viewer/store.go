package viewer

import (
	"github.com/mcncl/jsontree/internal/render"
)

// nodeState is the transient state of one mounted node.
type nodeState struct {
	expanded bool
	revealed int
	total    int

	measured       bool
	canOverflow    bool
	stringExpanded bool

	// mount identifies this mounting of the node. Reveal and measure continuations carry it
	// and are dropped when it no longer matches.
	mount uint64
}

// store holds node state keyed by path. Nodes mount the first time a render reads them;
// collapsing a composite unmounts everything below it.
type store struct {
	cfg       render.Config
	nodes     map[render.Path]*nodeState
	nextMount uint64
	mounted   []render.Path
}

func newStore(cfg render.Config) *store {
	return &store{cfg: cfg, nodes: make(map[render.Path]*nodeState)}
}

func (s *store) mount(p render.Path, depth int) *nodeState {
	if st, ok := s.nodes[p]; ok {
		return st
	}
	s.nextMount++
	st := &nodeState{
		expanded:       s.cfg.InitiallyExpanded(depth),
		stringExpanded: true,
		mount:          s.nextMount,
	}
	s.nodes[p] = st
	s.mounted = append(s.mounted, p)
	return st
}

// drainMounted returns the paths mounted since the last call.
func (s *store) drainMounted() []render.Path {
	out := s.mounted
	s.mounted = nil
	return out
}

// unmountBelow discards the state of every descendant of p.
func (s *store) unmountBelow(p render.Path) int {
	n := 0
	for q := range s.nodes {
		if q != p && p.Contains(q) {
			delete(s.nodes, q)
			n++
		}
	}
	return n
}

func (s *store) lookup(p render.Path, mount uint64) (*nodeState, bool) {
	st, ok := s.nodes[p]
	if !ok || st.mount != mount {
		return nil, false
	}
	return st, true
}

// Expanded implements render.State.
func (s *store) Expanded(p render.Path, depth int) bool {
	return s.mount(p, depth).expanded
}

// Revealed implements render.State.
func (s *store) Revealed(p render.Path, total int) int {
	st, ok := s.nodes[p]
	if !ok {
		return 0
	}
	st.total = total
	if st.revealed > total {
		return total
	}
	return st.revealed
}

// Overflow implements render.State. String-like scalars mount here since they have no
// expansion to read.
func (s *store) Overflow(p render.Path) render.Overflow {
	st := s.mount(p, 0)
	return render.Overflow{
		CanOverflow: st.canOverflow,
		Collapsed:   st.canOverflow && !st.stringExpanded,
	}
}
