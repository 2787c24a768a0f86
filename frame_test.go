package shell

import (
	"errors"
	"testing"
	"time"
)

// fakeSession scripts the surface layer for frame loop tests.
type fakeSession struct {
	canPresent   bool
	w, h         int
	acquires     int
	presents     int
	discards     int
	reconfigures int

	acquireErrs []error // consumed in order, nil entries succeed
	presentErrs []error
}

func (s *fakeSession) CanPresent() bool    { return s.canPresent }
func (s *fakeSession) Size() (int, int)    { return s.w, s.h }
func (s *fakeSession) Discard(FrameTarget) { s.discards++ }

func (s *fakeSession) Reconfigure(w, h int) error {
	s.reconfigures++
	return nil
}

func (s *fakeSession) Acquire(time.Duration) (FrameTarget, error) {
	s.acquires++
	if len(s.acquireErrs) > 0 {
		err := s.acquireErrs[0]
		s.acquireErrs = s.acquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &fakeTarget{w: s.w, h: s.h}, nil
}

func (s *fakeSession) Present(FrameTarget) error {
	s.presents++
	if len(s.presentErrs) > 0 {
		err := s.presentErrs[0]
		s.presentErrs = s.presentErrs[1:]
		return err
	}
	return nil
}

func newTestSession() *fakeSession {
	return &fakeSession{canPresent: true, w: 800, h: 600}
}

func TestFrameLoopPresents(t *testing.T) {
	s := newTestSession()
	rendered := 0
	l := NewFrameLoop(s, func(fc *FrameContext) error {
		rendered++
		if w, h := fc.Size(); w != 800 || h != 600 {
			t.Errorf("frame size = %dx%d, want 800x600", w, h)
		}
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := l.Tick(); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}
	if rendered != 3 {
		t.Errorf("rendered = %d, want 3", rendered)
	}
	if got := l.Stats(); got.Presented != 3 || got.Dropped != 0 || got.Skipped != 0 {
		t.Errorf("Stats() = %+v, want 3 presented", got)
	}
}

func TestFrameLoopGateBlocksAcquire(t *testing.T) {
	s := newTestSession()
	l := NewFrameLoop(s, nil, WithGate(func() bool { return false }))

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.acquires != 0 {
		t.Errorf("acquires = %d, want 0 while gated", s.acquires)
	}
	if got := l.Stats(); got.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", got.Skipped)
	}
}

func TestFrameLoopSkipsWithoutSurface(t *testing.T) {
	s := newTestSession()
	s.canPresent = false
	l := NewFrameLoop(s, nil)

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.acquires != 0 {
		t.Errorf("acquires = %d, want 0 without a presentable surface", s.acquires)
	}
}

func TestFrameLoopAcquireRecoverable(t *testing.T) {
	s := newTestSession()
	s.acquireErrs = []error{ErrSurfaceOutdated}
	l := NewFrameLoop(s, nil)

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.reconfigures != 1 {
		t.Errorf("reconfigures = %d, want 1", s.reconfigures)
	}
	if got := l.Stats(); got.Skipped != 1 || got.Presented != 0 {
		t.Errorf("Stats() = %+v, want 1 skipped", got)
	}

	// Next tick succeeds normally.
	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if got := l.Stats(); got.Presented != 1 {
		t.Errorf("Presented = %d, want 1", got.Presented)
	}
}

func TestFrameLoopAcquireFatal(t *testing.T) {
	s := newTestSession()
	s.acquireErrs = []error{ErrDeviceUnavailable}
	l := NewFrameLoop(s, nil)

	if err := l.Tick(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Tick() error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestFrameLoopRenderFailureDropsFrame(t *testing.T) {
	s := newTestSession()
	l := NewFrameLoop(s, func(*FrameContext) error {
		return errors.New("draw failed")
	})

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v, render failures are never fatal", err)
	}
	if s.discards != 1 {
		t.Errorf("discards = %d, want 1", s.discards)
	}
	if got := l.Stats(); got.Dropped != 1 || got.Presented != 0 {
		t.Errorf("Stats() = %+v, want 1 dropped", got)
	}
}

func TestFrameLoopPresentRetryOnce(t *testing.T) {
	s := newTestSession()
	s.presentErrs = []error{ErrSurfaceOutdated, nil}
	l := NewFrameLoop(s, nil)

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.reconfigures != 1 {
		t.Errorf("reconfigures = %d, want 1", s.reconfigures)
	}
	if s.presents != 2 {
		t.Errorf("presents = %d, want 2 (retry within the same tick)", s.presents)
	}
	// A tick that recovers on retry put exactly one frame on screen and
	// abandoned none; counting the first failure too would inflate totals.
	if got := l.Stats(); got.Presented != 1 || got.Dropped != 0 {
		t.Errorf("Stats() = %+v, want 1 presented 0 dropped", got)
	}
	if l.Parked() {
		t.Error("Parked() = true after a successful retry")
	}
}

func TestFrameLoopSecondFailureParks(t *testing.T) {
	s := newTestSession()
	s.presentErrs = []error{ErrSurfaceOutdated, ErrSurfaceOutdated}
	var sunk error
	l := NewFrameLoop(s, nil, WithErrorSink(func(err error) { sunk = err }))

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v, parking is not fatal", err)
	}
	if !l.Parked() {
		t.Fatal("Parked() = false after two consecutive failures")
	}
	if !errors.Is(sunk, ErrSurfaceOutdated) {
		t.Errorf("sink error = %v, want ErrSurfaceOutdated", sunk)
	}
	if got := l.Stats(); got.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1 for the abandoned frame", got.Dropped)
	}

	// Parked ticks skip without touching the surface.
	acquires := s.acquires
	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.acquires != acquires {
		t.Errorf("acquires while parked = %d, want %d", s.acquires, acquires)
	}

	// Unpark resumes presentation.
	l.Unpark()
	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if got := l.Stats(); got.Presented != 1 {
		t.Errorf("Presented after unpark = %d, want 1", got.Presented)
	}
}

func TestFrameLoopNonRecoverablePresentDrops(t *testing.T) {
	s := newTestSession()
	s.presentErrs = []error{errors.New("driver hiccup")}
	l := NewFrameLoop(s, nil)

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.reconfigures != 0 {
		t.Errorf("reconfigures = %d, want 0 for a non-recoverable failure", s.reconfigures)
	}
	if got := l.Stats(); got.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", got.Dropped)
	}
	if l.Parked() {
		t.Error("Parked() = true, a single drop must not park the loop")
	}
}

func TestFrameLoopCancelledMidFrameDiscards(t *testing.T) {
	s := newTestSession()
	cancelled := false
	l := NewFrameLoop(s, func(*FrameContext) error {
		cancelled = true // destroy arrives while rendering
		return nil
	}, WithCancelCheck(func() bool { return cancelled }))

	if err := l.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if s.presents != 0 {
		t.Errorf("presents = %d, want 0 for a cancelled frame", s.presents)
	}
	if s.discards != 1 {
		t.Errorf("discards = %d, want 1", s.discards)
	}
}

func TestFrameLoopElapsedAdvances(t *testing.T) {
	s := newTestSession()
	var first, second time.Duration
	ticks := 0
	l := NewFrameLoop(s, func(fc *FrameContext) error {
		if ticks == 0 {
			first = fc.Elapsed()
		} else {
			second = fc.Elapsed()
		}
		ticks++
		return nil
	})

	if err := l.Tick(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if err := l.Tick(); err != nil {
		t.Fatal(err)
	}
	if second <= first {
		t.Errorf("Elapsed() = %v then %v, want monotonic increase", first, second)
	}
}
