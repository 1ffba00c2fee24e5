package event

import (
	"fmt"
	"io"
	"os"
	"sort"

	"go-hep.org/x/hep/hepmc"
)

// pbToMb converts a HepMC cross section to millibarn.
const pbToMb = 1e-9

// HepMCReader reads events from a HepMC2 ASCII stream.
type HepMCReader struct {
	dec    *hepmc.Decoder
	closer io.Closer
	evt    *Event
	info   Info
	err    error
}

// NewHepMCReader reads from r. sigmaGen (mb) is reported until an event
// carries its own cross section.
func NewHepMCReader(r io.Reader, sigmaGen float64) *HepMCReader {
	return &HepMCReader{
		dec:  hepmc.NewDecoder(r),
		info: Info{SigmaGen: sigmaGen},
	}
}

// OpenHepMC opens the HepMC file at path.
func OpenHepMC(path string, sigmaGen float64) (*HepMCReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open HepMC file: %w", err)
	}
	r := NewHepMCReader(f, sigmaGen)
	r.closer = f
	return r, nil
}

func (r *HepMCReader) Next() bool {
	if r.err != nil {
		return false
	}
	var evt hepmc.Event
	if err := r.dec.Decode(&evt); err != nil {
		r.err = err
		return false
	}
	r.evt = fromHepMC(&evt)
	r.info.NAccepted++
	if evt.CrossSection != nil && evt.CrossSection.Value > 0 {
		r.info.SigmaGen = evt.CrossSection.Value * pbToMb
	}
	return true
}

// fromHepMC orders the particles of evt by barcode and links the outgoing
// particles of each end vertex as daughters.
func fromHepMC(evt *hepmc.Event) *Event {
	barcodes := make([]int, 0, len(evt.Particles))
	for bc := range evt.Particles {
		barcodes = append(barcodes, bc)
	}
	sort.Ints(barcodes)

	index := make(map[int]int, len(barcodes))
	for i, bc := range barcodes {
		index[bc] = i
	}

	nodes := make([]node, len(barcodes))
	for i, bc := range barcodes {
		p := evt.Particles[bc]
		nodes[i] = node{id: int(p.PdgID), status: p.Status, p: p.Momentum}
		if p.EndVertex == nil {
			continue
		}
		for _, out := range p.EndVertex.ParticlesOut {
			if j, ok := index[out.Barcode]; ok {
				nodes[i].children = append(nodes[i].children, j)
			}
		}
	}
	return assemble(evt.EventNumber, nodes)
}

func (r *HepMCReader) Event() *Event { return r.evt }
func (r *HepMCReader) Info() Info    { return r.info }
func (r *HepMCReader) Err() error    { return r.err }

func (r *HepMCReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
