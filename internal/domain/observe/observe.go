// Package observe lets the domain transforms report stereo outcomes without
// depending on a metrics backend.  Soft degradations are both logged at DEBUG
// and counted through an Observer.
package observe

import (
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Source names the transform that produced or dropped a stereo element.
type Source string

const (
	SourceNotation   Source = "notation"
	SourcePattern    Source = "pattern"
	SourcePartition  Source = "partition"
	SourceProjection Source = "projection"
)

// Observer receives stereo outcomes.  Implementations must be safe for
// concurrent use.
type Observer interface {
	// Emitted counts a stereo element added to an output graph.
	Emitted(source Source, kind molecule.StereoKind)

	// Dropped counts a stereo element or ring skipped for reason.
	Dropped(source Source, reason string)

	// Classified counts a ring matched to a projection type.
	Classified(projection string)
}

type nop struct{}

func (nop) Emitted(Source, molecule.StereoKind) {}
func (nop) Dropped(Source, string)              {}
func (nop) Classified(string)                   {}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nop{} }

// OrNop returns o, or the nop observer when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return nop{}
	}
	return o
}

// Tracker bundles a logger and an observer for one source.
type Tracker struct {
	Logger   logging.Logger
	Observer Observer
	Source   Source
}

// NewTracker fills nil collaborators with nop implementations.
func NewTracker(source Source, logger logging.Logger, observer Observer) Tracker {
	return Tracker{
		Logger:   logging.OrNop(logger),
		Observer: OrNop(observer),
		Source:   source,
	}
}

// Drop logs the degradation at DEBUG and counts it.
func (t Tracker) Drop(reason string, fields ...logging.Field) {
	t.Logger.Debug("stereo omitted", append(fields, logging.Reason(reason))...)
	t.Observer.Dropped(t.Source, reason)
}

// Emit counts an element of the given kind.
func (t Tracker) Emit(kind molecule.StereoKind) {
	t.Observer.Emitted(t.Source, kind)
}
