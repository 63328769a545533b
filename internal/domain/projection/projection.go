// Package projection infers tetrahedral centres from 2D ring drawings that
// follow the Haworth and chair conventions.
package projection

import (
	"math"
	"strings"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/rings"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Projection names a ring-drawing convention.
type Projection string

const (
	Haworth Projection = "haworth"
	Chair   Projection = "chair"
	Boat    Projection = "boat"
)

// Reasons reported when a ring yields no centres.
const (
	ReasonMissingCoordinates   = "missing_coordinates"
	ReasonCollinear            = "collinear"
	ReasonNotHorizontal        = "not_horizontal"
	ReasonVerticalChair        = "vertical_chair"
	ReasonOffVertical          = "off_vertical"
	ReasonDuplicateSubstituent = "duplicate_substituent"
	ReasonTooFewSubstituents   = "too_few_substituents"
	ReasonNonPlainBond         = "non_plain_bond"
)

// Options tunes recognition.
type Options struct {
	// ThresholdDeg is the angular tolerance for horizontal ring bonds and
	// vertical Haworth substituents.
	ThresholdDeg float64

	// MinRingSize and MaxRingSize bound the isolated rings considered.
	MinRingSize int
	MaxRingSize int

	// Projections lists the conventions converted to centres.  Boat rings are
	// classified but never converted.
	Projections []Projection
}

// DefaultOptions returns a 5 degree tolerance over 5 to 7 membered rings with
// Haworth and chair enabled.
func DefaultOptions() Options {
	return Options{
		ThresholdDeg: 5,
		MinRingSize:  5,
		MaxRingSize:  7,
		Projections:  []Projection{Haworth, Chair},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Turn classification
// ─────────────────────────────────────────────────────────────────────────────

type turn byte

const (
	left  turn = 'L'
	right turn = 'R'
)

type shape struct {
	projection Projection
	winding    molecule.Winding
}

// shapes maps a turn sequence, read along the ring walk, to its convention.
var shapes = buildShapes()

func buildShapes() map[string]shape {
	m := make(map[string]shape)
	for n := 5; n <= 7; n++ {
		m[strings.Repeat("R", n)] = shape{Haworth, molecule.Clockwise}
		m[strings.Repeat("L", n)] = shape{Haworth, molecule.Anticlockwise}
	}
	rotations := func(seq string, s shape) {
		for i := 0; i < len(seq); i++ {
			m[seq[i:]+seq[:i]] = s
		}
	}
	rotations("LRRLRR", shape{Chair, molecule.Clockwise})
	rotations("RLLRLL", shape{Chair, molecule.Anticlockwise})
	rotations("RRLLLL", shape{Boat, molecule.Anticlockwise})
	rotations("LLRRRR", shape{Boat, molecule.Clockwise})
	return m
}

// turns reads the turn at each ring vertex from the signed area of the
// triangle formed with its ring neighbours.  A collinear triple aborts.
func turns(points []molecule.Point2d) ([]turn, bool) {
	n := len(points)
	out := make([]turn, n)
	for i := 0; i < n; i++ {
		a, b, c := points[(i+n-1)%n], points[i], points[(i+1)%n]
		det := (a.X-c.X)*(b.Y-c.Y) - (a.Y-c.Y)*(b.X-c.X)
		switch {
		case det > 0:
			out[i] = left
		case det < 0:
			out[i] = right
		default:
			return nil, false
		}
	}
	return out, true
}

func classify(ts []turn) (shape, bool) {
	s, ok := shapes[string(ts)]
	return s, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// Recognizer
// ─────────────────────────────────────────────────────────────────────────────

// Recognizer is immutable after construction and safe for concurrent use.
type Recognizer struct {
	logger    logging.Logger
	observer  observe.Observer
	opts      Options
	threshold float64
	enabled   map[Projection]bool
}

// NewRecognizer returns a Recognizer.  Zero-valued options fall back to
// DefaultOptions field by field.
func NewRecognizer(logger logging.Logger, observer observe.Observer, opts Options) *Recognizer {
	def := DefaultOptions()
	if opts.ThresholdDeg <= 0 {
		opts.ThresholdDeg = def.ThresholdDeg
	}
	if opts.MinRingSize <= 0 {
		opts.MinRingSize = def.MinRingSize
	}
	if opts.MaxRingSize <= 0 {
		opts.MaxRingSize = def.MaxRingSize
	}
	if opts.Projections == nil {
		opts.Projections = def.Projections
	}
	enabled := make(map[Projection]bool, len(opts.Projections))
	for _, p := range opts.Projections {
		enabled[p] = true
	}
	return &Recognizer{
		logger:    logging.OrNop(logger).Named("projection"),
		observer:  observe.OrNop(observer),
		opts:      opts,
		threshold: math.Sin(opts.ThresholdDeg * math.Pi / 180),
		enabled:   enabled,
	}
}

// Recognize returns the centres implied by the ring drawings of g.  Atoms
// without a stereocenter classification are skipped; rings that fail any
// geometric check contribute nothing.
func (r *Recognizer) Recognize(g *molecule.MolecularGraph, centers Stereocenters) ([]*molecule.Tetrahedral, error) {
	if g == nil {
		return nil, errors.InvalidGraph("graph is nil")
	}
	if centers == nil {
		return nil, errors.InvalidParam("stereocenter classification is nil")
	}
	track := observe.NewTracker(observe.SourceProjection, r.logger, r.observer)
	adj := g.AdjacencyList()

	var out []*molecule.Tetrahedral
	for _, ring := range rings.Sized(rings.Isolated(adj), r.opts.MinRingSize, r.opts.MaxRingSize) {
		found := r.ring(g, adj, ring, centers, track)
		for _, e := range found {
			track.Emit(e.Kind())
		}
		out = append(out, found...)
	}
	return out, nil
}

// Perceive returns a copy of g carrying its existing stereo plus the
// recognised centres.  g is not modified.
func (r *Recognizer) Perceive(g *molecule.MolecularGraph, centers Stereocenters) (*molecule.MolecularGraph, []*molecule.Tetrahedral, error) {
	found, err := r.Recognize(g, centers)
	if err != nil {
		return nil, nil, err
	}
	extra := make([]molecule.StereoElement, len(found))
	for i, e := range found {
		extra[i] = e
	}
	out, err := g.WithStereo(extra...)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "attach recognised centres")
	}
	return out, found, nil
}

// substituents holds the up and down exocyclic neighbour of each ring vertex;
// -1 when absent.
type substituents struct {
	up, down []int
	found    int
}

func (r *Recognizer) ring(g *molecule.MolecularGraph, adj [][]int, ring []int, centers Stereocenters, track observe.Tracker) []*molecule.Tetrahedral {
	ringField := logging.Any("ring", ring)

	points := make([]molecule.Point2d, len(ring))
	for i, v := range ring {
		p := g.Atom(v).Point2d
		if p == nil {
			track.Drop(ReasonMissingCoordinates, ringField)
			return nil
		}
		points[i] = *p
	}

	ts, ok := turns(points)
	if !ok {
		track.Drop(ReasonCollinear, ringField)
		return nil
	}
	s, ok := classify(ts)
	if !ok {
		return nil
	}
	r.observer.Classified(string(s.projection))
	r.logger.Debug("ring classified",
		ringField,
		logging.String("projection", string(s.projection)),
		logging.String("winding", s.winding.String()))

	if s.projection == Boat || !r.enabled[s.projection] {
		return nil
	}
	if s.projection == Haworth && !r.horizontal(points) {
		track.Drop(ReasonNotHorizontal, ringField)
		return nil
	}

	offset, ok := r.offset(s.projection, points, ts)
	if !ok {
		track.Drop(ReasonVerticalChair, ringField)
		return nil
	}

	subs, reason := r.label(g, adj, ring, s.projection, offset)
	if reason != "" {
		track.Drop(reason, ringField)
		return nil
	}
	if s.projection == Haworth && subs.found < 2 {
		track.Drop(ReasonTooFewSubstituents, ringField)
		return nil
	}

	return r.emit(g, ring, subs, s.winding, centers, track)
}

// horizontal reports whether any ring bond lies within the threshold of the
// x axis.
func (r *Recognizer) horizontal(points []molecule.Point2d) bool {
	n := len(points)
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		mag := math.Hypot(dx, dy)
		if mag > 0 && math.Abs(dy)/mag < r.threshold {
			return true
		}
	}
	return false
}

// offset is the deviation of the drawing's horizontal axis from <1,0>.  For
// a chair the axis runs between the ring neighbours of the first vertex that
// turns against the majority; other projections are assumed upright.
func (r *Recognizer) offset(p Projection, points []molecule.Point2d, ts []turn) (molecule.Point2d, bool) {
	if p != Chair {
		return molecule.Point2d{}, true
	}
	pivot := 2
	switch {
	case ts[1] == ts[2]:
		pivot = 0
	case ts[0] == ts[2]:
		pivot = 1
	}
	prev, next := points[(pivot+5)%6], points[(pivot+1)%6]
	dx, dy := prev.X-next.X, prev.Y-next.Y
	mag := math.Hypot(dx, dy)
	dx, dy = dx/mag, dy/mag
	if dx < 0 {
		dx, dy = -dx, -dy
	}
	if 1-math.Abs(dy) < r.threshold {
		return molecule.Point2d{}, false
	}
	return molecule.Point2d{X: 1 - dx, Y: dy}, true
}

// label sorts the exocyclic neighbours of every ring vertex into up and down.
// Vertices with more than two are left unlabelled.  A non-empty reason
// rejects the ring.
func (r *Recognizer) label(g *molecule.MolecularGraph, adj [][]int, ring []int, p Projection, offset molecule.Point2d) (substituents, string) {
	n := len(ring)
	subs := substituents{up: make([]int, n), down: make([]int, n)}
	for i, v := range ring {
		subs.up[i], subs.down[i] = -1, -1
		prev, next := ring[(i+n-1)%n], ring[(i+1)%n]
		focus := g.Atom(v).Point2d

		exo := len(adj[v]) - 2
		if exo > 2 {
			r.logger.Debug("ring vertex skipped", logging.Atom(v), logging.Int("substituents", exo))
			continue
		}
		for _, w := range adj[v] {
			if w == prev || w == next {
				continue
			}
			q := g.Atom(w).Point2d
			if q == nil {
				return subs, ReasonMissingCoordinates
			}

			dx, dy := q.X-focus.X, q.Y-focus.Y
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				return subs, ReasonMissingCoordinates
			}
			dx, dy = dx/mag-offset.X, dy/mag-offset.Y
			mag = math.Hypot(dx, dy)
			if mag == 0 {
				return subs, ReasonOffVertical
			}
			dx, dy = dx/mag, dy/mag

			if p == Haworth && math.Abs(dx) > r.threshold {
				return subs, ReasonOffVertical
			}
			slot := &subs.down[i]
			if dy > 0 {
				slot = &subs.up[i]
			}
			if *slot >= 0 {
				return subs, ReasonDuplicateSubstituent
			}
			*slot = w
			subs.found++
		}
	}
	return subs, ""
}

// emit builds a centre at each classified ring vertex with neighbours read
// up, previous, down, next.  A missing substituent is stood in for by the
// focus.  Any non-plain bond around a centre rejects the whole ring.
func (r *Recognizer) emit(g *molecule.MolecularGraph, ring []int, subs substituents, w molecule.Winding, centers Stereocenters, track observe.Tracker) []*molecule.Tetrahedral {
	n := len(ring)
	var out []*molecule.Tetrahedral
	for i, v := range ring {
		if !centers.IsStereocenter(v) || (subs.up[i] < 0 && subs.down[i] < 0) {
			continue
		}
		focus := g.Atom(v)
		prev, next := g.Atom(ring[(i+n-1)%n]), g.Atom(ring[(i+1)%n])
		up, down := focus, focus
		if subs.up[i] >= 0 {
			up = g.Atom(subs.up[i])
		}
		if subs.down[i] >= 0 {
			down = g.Atom(subs.down[i])
		}

		for _, nbr := range [4]*molecule.Atom{up, prev, down, next} {
			if nbr == focus {
				continue
			}
			if b := g.BondBetween(focus, nbr); b == nil || !b.IsPlainSingle() {
				track.Drop(ReasonNonPlainBond, logging.Atom(v))
				return nil
			}
		}
		out = append(out, &molecule.Tetrahedral{
			Focus:     focus,
			Neighbors: [4]*molecule.Atom{up, prev, down, next},
			Winding:   w,
		})
	}
	return out
}
