package event

import (
	"fmt"
	"io"
	"math"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"

	"github.com/decibelcooper/chicplot/kinem"
)

// ProioReader reads eic.Particle entries with a given tag from a proio
// stream.
//
// The eic data model carries no generator status, so one is derived: an
// entry with children gets the decayed status passed to the reader and
// every other entry is final state (FinalStatus).
type ProioReader struct {
	r       *proio.Reader
	events  <-chan *proio.Event
	tag     string
	decayed int
	n       int
	evt     *Event
	info    Info
	err     error
}

// DefaultProioTag selects the full generator record.
const DefaultProioTag = "MCParticles"

// FinalStatus is the status given to proio entries without children.
const FinalStatus = 1

// NewProioReader reads from r. Entries with children are given the status
// decayed.
func NewProioReader(r io.Reader, tag string, sigmaGen float64, decayed int) *ProioReader {
	return newProioReader(proio.NewReader(r), tag, sigmaGen, decayed)
}

// OpenProio opens the proio file at path.
func OpenProio(path, tag string, sigmaGen float64, decayed int) (*ProioReader, error) {
	r, err := proio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open proio file: %w", err)
	}
	return newProioReader(r, tag, sigmaGen, decayed), nil
}

func newProioReader(r *proio.Reader, tag string, sigmaGen float64, decayed int) *ProioReader {
	if tag == "" {
		tag = DefaultProioTag
	}
	return &ProioReader{
		r:       r,
		events:  r.ScanEvents(),
		tag:     tag,
		decayed: decayed,
		info:    Info{SigmaGen: sigmaGen},
	}
}

func (r *ProioReader) Next() bool {
	if r.err != nil {
		return false
	}
	pevt, ok := <-r.events
	if !ok {
		r.err = io.EOF
		return false
	}

	ids := pevt.TaggedEntries(r.tag)
	parts := make([]*eic.Particle, len(ids))
	for i, id := range ids {
		part, ok := pevt.GetEntry(id).(*eic.Particle)
		if !ok {
			r.err = fmt.Errorf("entry %d tagged %q is not an eic.Particle", id, r.tag)
			return false
		}
		parts[i] = part
	}
	r.evt = fromEIC(r.n, ids, parts, r.decayed)
	r.n++
	r.info.NAccepted++
	return true
}

func fromEIC(number int, ids []uint64, parts []*eic.Particle, decayed int) *Event {
	index := make(map[uint64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	nodes := make([]node, len(parts))
	for i, part := range parts {
		px := float64(part.GetP().GetX())
		py := float64(part.GetP().GetY())
		pz := float64(part.GetP().GetZ())
		m := float64(part.GetMass())
		nodes[i] = node{
			id:     int(part.GetPdg()),
			status: FinalStatus,
			p:      kinem.New(px, py, pz, math.Sqrt(px*px+py*py+pz*pz+m*m)),
		}
		if len(part.GetChild()) > 0 {
			nodes[i].status = decayed
		}
		for _, child := range part.GetChild() {
			if j, ok := index[child]; ok {
				nodes[i].children = append(nodes[i].children, j)
			}
		}
	}
	return assemble(number, nodes)
}

func (r *ProioReader) Event() *Event { return r.evt }
func (r *ProioReader) Info() Info    { return r.info }
func (r *ProioReader) Err() error    { return r.err }
func (r *ProioReader) Close() error {
	r.r.Close()
	return nil
}
