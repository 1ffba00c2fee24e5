// Package event defines the generator-neutral event record read by the
// decay-chain walker, and the generators that produce it: a built-in
// charmonium gun and readers for HepMC, LCIO and proio files.
//
// Records follow the Pythia layout. Index 0 is the system entry, every
// particle names its daughters as an inclusive index range [Daughter1,
// Daughter2], and a particle without (resolvable) daughters has Daughter1 <= 0.
package event

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"go-hep.org/x/hep/fmom"

	"github.com/decibelcooper/chicplot/kinem"
)

// Particle is one entry of an event record.
type Particle struct {
	ID     int
	Status int
	P      fmom.PxPyPzE

	// Daughter1 and Daughter2 are the first and last daughter indices.
	Daughter1 int
	Daughter2 int
}

func (p Particle) Y() float64  { return kinem.Rapidity(p.P) }
func (p Particle) Pt() float64 { return kinem.Pt(p.P) }

// NDaughters returns the number of daughters in the record.
func (p Particle) NDaughters() int {
	switch {
	case p.Daughter1 <= 0:
		return 0
	case p.Daughter2 < p.Daughter1:
		return 1
	default:
		return p.Daughter2 - p.Daughter1 + 1
	}
}

// Event is one generated collision.
type Event struct {
	Number    int
	Particles []Particle
}

// At returns the particle at index i, and false when i is out of range.
func (e *Event) At(i int) (Particle, bool) {
	if i < 0 || i >= len(e.Particles) {
		return Particle{}, false
	}
	return e.Particles[i], true
}

// Len returns the number of entries, the system entry included.
func (e *Event) Len() int { return len(e.Particles) }

// Info is the run summary a generator reports.
type Info struct {
	SigmaGen  float64 // mb
	NAccepted int64
}

// Generator produces events one at a time.
//
// Next returns false when no event was produced. With a nil Err this is a
// failed trial and the caller moves on; io.EOF ends a file-backed run; any
// other error is fatal.
type Generator interface {
	Next() bool
	Event() *Event
	Info() Info
	Err() error
	Close() error
}

// SystemID and SystemStatus mark the system entry at index 0.
const (
	SystemID     = 90
	SystemStatus = -11
)

// node is a particle of a source record with its children given as node
// indices.
type node struct {
	id       int
	status   int
	p        fmom.PxPyPzE
	children []int
}

// assemble lays nodes out after a system entry and converts their children
// to daughter ranges. Children that are not contiguous in the record are
// marked unresolved (-1, -1).
func assemble(number int, nodes []node) *Event {
	evt := &Event{
		Number:    number,
		Particles: make([]Particle, 0, len(nodes)+1),
	}
	var sys fmom.PxPyPzE
	for _, n := range nodes {
		if len(n.children) == 0 && n.status > 0 {
			sys = kinem.Sum(sys, n.p)
		}
	}
	evt.Particles = append(evt.Particles, Particle{ID: SystemID, Status: SystemStatus, P: sys})

	for _, n := range nodes {
		part := Particle{ID: n.id, Status: n.status, P: n.p}
		part.Daughter1, part.Daughter2 = daughterRange(n.children)
		evt.Particles = append(evt.Particles, part)
	}
	return evt
}

func daughterRange(children []int) (int, int) {
	if len(children) == 0 {
		return 0, 0
	}
	idx := append([]int(nil), children...)
	sort.Ints(idx)
	lo, hi := idx[0], idx[len(idx)-1]
	if hi-lo+1 != len(idx) {
		return -1, -1
	}
	// node indices are shifted by the system entry
	return lo + 1, hi + 1
}

// List writes a table of the event record to w.
func List(w io.Writer, evt *Event) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "event %d\t\t\t\t\t\t\t\t\t\t\n", evt.Number)
	fmt.Fprintf(tw, "no\tid\tname\tstatus\td1\td2\tpx\tpy\tpz\te\tm\t\n")
	for i, p := range evt.Particles {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			i, p.ID, Name(p.ID), p.Status, p.Daughter1, p.Daughter2,
			p.P.Px(), p.P.Py(), p.P.Pz(), p.P.E(), kinem.Mass(p.P),
		)
	}
	return tw.Flush()
}
