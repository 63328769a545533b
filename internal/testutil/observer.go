package testutil

import (
	"sync"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// RecordingObserver counts stereo outcomes for assertions.
type RecordingObserver struct {
	mu         sync.Mutex
	emitted    map[molecule.StereoKind]int
	dropped    map[string]int
	classified map[string]int
}

var _ observe.Observer = (*RecordingObserver)(nil)

// NewRecordingObserver returns an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		emitted:    make(map[molecule.StereoKind]int),
		dropped:    make(map[string]int),
		classified: make(map[string]int),
	}
}

func (o *RecordingObserver) Emitted(_ observe.Source, kind molecule.StereoKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitted[kind]++
}

func (o *RecordingObserver) Dropped(_ observe.Source, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped[reason]++
}

func (o *RecordingObserver) Classified(projection string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.classified[projection]++
}

// EmittedCount returns how many elements of kind were reported.
func (o *RecordingObserver) EmittedCount(kind molecule.StereoKind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.emitted[kind]
}

// DroppedCount returns how many drops carried reason.
func (o *RecordingObserver) DroppedCount(reason string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped[reason]
}

// TotalDropped returns the number of drops for any reason.
func (o *RecordingObserver) TotalDropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.dropped {
		n += c
	}
	return n
}

// ClassifiedCount returns how many rings were matched to projection.
func (o *RecordingObserver) ClassifiedCount(projection string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.classified[projection]
}
