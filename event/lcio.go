package event

import (
	"fmt"
	"io"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/lcio"
)

// MCParticleCollection is the LCIO collection holding the generator record.
const MCParticleCollection = "MCParticle"

// LCIOReader reads the MCParticle collection of an LCIO file.
type LCIOReader struct {
	r    *lcio.Reader
	coll string
	evt  *Event
	info Info
	err  error
}

// OpenLCIO opens the LCIO file at path. An empty collection name selects
// MCParticleCollection.
func OpenLCIO(path, collection string, sigmaGen float64) (*LCIOReader, error) {
	r, err := lcio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open LCIO file: %w", err)
	}
	if collection == "" {
		collection = MCParticleCollection
	}
	return &LCIOReader{r: r, coll: collection, info: Info{SigmaGen: sigmaGen}}, nil
}

func (r *LCIOReader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.r.Next() {
		r.err = r.r.Err()
		if r.err == nil {
			r.err = io.EOF
		}
		return false
	}
	lcEvt := r.r.Event()
	if !lcEvt.Has(r.coll) {
		r.err = fmt.Errorf("event %d has no %q collection", lcEvt.EventNumber, r.coll)
		return false
	}
	coll, ok := lcEvt.Get(r.coll).(*lcio.McParticleContainer)
	if !ok {
		r.err = fmt.Errorf("collection %q is not an MCParticle collection", r.coll)
		return false
	}
	r.evt = fromLCIO(int(lcEvt.EventNumber), coll)
	r.info.NAccepted++
	return true
}

func fromLCIO(number int, coll *lcio.McParticleContainer) *Event {
	index := make(map[*lcio.McParticle]int, len(coll.Particles))
	for i := range coll.Particles {
		index[&coll.Particles[i]] = i
	}

	nodes := make([]node, len(coll.Particles))
	for i := range coll.Particles {
		mc := &coll.Particles[i]
		nodes[i] = node{
			id:     int(mc.PDG),
			status: int(mc.GenStatus),
			p:      fmom.NewPxPyPzE(mc.P[0], mc.P[1], mc.P[2], mc.Energy()),
		}
		for _, child := range mc.Children {
			if j, ok := index[child]; ok {
				nodes[i].children = append(nodes[i].children, j)
			}
		}
	}
	return assemble(number, nodes)
}

func (r *LCIOReader) Event() *Event { return r.evt }
func (r *LCIOReader) Info() Info    { return r.info }
func (r *LCIOReader) Err() error    { return r.err }
func (r *LCIOReader) Close() error  { return r.r.Close() }
