package page

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"leet2git/internal/common/clock"
	"leet2git/internal/domain/model"
)

const (
	DefaultRenderDelay  = time.Second
	DefaultCooldown     = 3 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

type State int

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	if s == StateProcessing {
		return "processing"
	}
	return "idle"
}

// Sender delivers one message over the channel and waits for its response.
type Sender interface {
	Send(ctx context.Context, msg model.Message) (model.Response, error)
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(level Level, message string)
}

type WatcherOptions struct {
	RenderDelay time.Duration
	Cooldown    time.Duration
	Clock       clock.Clock
	// NewID generates submission ids; defaults to model.NewSubmissionID.
	NewID func(now time.Time) string
}

// Watcher turns page mutations into SUBMISSION_DETECTED messages. It is Idle
// until an accepted result shows up on a problem page, then Processing until
// the cooldown after that attempt runs out.
type Watcher struct {
	source    SnapshotSource
	extractor *Extractor
	sender    Sender
	notifier  Notifier
	clock     clock.Clock
	newID     func(time.Time) string

	renderDelay time.Duration
	cooldown    time.Duration

	mu       sync.Mutex
	inFlight bool
	idleAt   time.Time
	lastID   string
}

func NewWatcher(source SnapshotSource, extractor *Extractor, sender Sender, notifier Notifier, opts WatcherOptions) *Watcher {
	w := &Watcher{
		source:      source,
		extractor:   extractor,
		sender:      sender,
		notifier:    notifier,
		clock:       opts.Clock,
		newID:       opts.NewID,
		renderDelay: opts.RenderDelay,
		cooldown:    opts.Cooldown,
	}
	if w.clock == nil {
		w.clock = clock.Real{}
	}
	if w.newID == nil {
		w.newID = model.NewSubmissionID
	}
	if w.renderDelay <= 0 {
		w.renderDelay = DefaultRenderDelay
	}
	if w.cooldown <= 0 {
		w.cooldown = DefaultCooldown
	}
	return w
}

// State reports Idle once the cooldown following the last attempt elapsed.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Watcher) stateLocked() State {
	if w.inFlight || w.clock.Now().Before(w.idleAt) {
		return StateProcessing
	}
	return StateIdle
}

// LastSubmissionID is the id of the last submission handed to the sender.
func (w *Watcher) LastSubmissionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastID
}

// OnMutation reacts to one batch of page mutations. Batches that add no
// nodes are ignored.
func (w *Watcher) OnMutation(ctx context.Context, addedNodes int) {
	if addedNodes <= 0 {
		return
	}
	w.Check(ctx)
}

// Check reads the page and processes it when it shows an accepted result.
func (w *Watcher) Check(ctx context.Context) {
	if w.State() == StateProcessing {
		return
	}
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		log.Printf("WARN: Failed to read page: %v", err)
		return
	}
	if !w.extractor.IsProblemPage(snap) || !w.extractor.IsAccepted(snap) {
		return
	}

	w.mu.Lock()
	if w.stateLocked() == StateProcessing {
		w.mu.Unlock()
		return
	}
	w.inFlight = true
	w.mu.Unlock()

	log.Println("INFO: Accepted submission detected")
	w.process(ctx, snap)

	w.mu.Lock()
	w.inFlight = false
	w.idleAt = w.clock.Now().Add(w.cooldown)
	w.mu.Unlock()
}

func (w *Watcher) process(ctx context.Context, snap *Snapshot) {
	problem := w.extractor.ExtractProblem(snap)
	if problem == nil {
		w.notifier.Notify(LevelError, "Could not extract problem details")
		return
	}

	// The editor may still be rendering the submitted code.
	if err := w.clock.Sleep(ctx, w.renderDelay); err != nil {
		return
	}
	if fresh, err := w.source.Snapshot(ctx); err == nil {
		snap = fresh
	} else {
		log.Printf("WARN: Failed to re-read page, using earlier capture: %v", err)
	}

	code, language, ok := w.extractor.ExtractCode(snap)
	if !ok {
		w.notifier.Notify(LevelError, "Could not extract solution code")
		return
	}
	runtime, memory := w.extractor.ExtractStats(snap)

	now := w.clock.Now()
	submission := w.extractor.NewSubmission(w.newID(now), problem, code, language, runtime, memory, now)

	// Only the immediately preceding id is remembered.
	w.mu.Lock()
	if submission.ID == w.lastID {
		w.mu.Unlock()
		log.Println("INFO: Duplicate submission detected, skipping")
		return
	}
	w.lastID = submission.ID
	w.mu.Unlock()

	w.send(ctx, submission)
}

func (w *Watcher) send(ctx context.Context, submission model.Submission) {
	msg, err := model.NewMessage(model.KindSubmissionDetected, submission)
	if err != nil {
		log.Printf("ERROR: Failed to encode submission: %v", err)
		w.notifier.Notify(LevelError, "Failed to process submission")
		return
	}
	resp, err := w.sender.Send(ctx, msg)
	if err != nil {
		log.Printf("ERROR: Failed to send submission: %v", err)
		if errors.Is(err, context.Canceled) {
			return
		}
		w.notifier.Notify(LevelError, "Failed to communicate with the leet2git server")
		return
	}
	if !resp.Success {
		w.notifier.Notify(LevelError, fmt.Sprintf("Failed to sync: %s", resp.Error))
		return
	}

	w.notifier.Notify(LevelSuccess, "Solution detected! Syncing to GitHub...")
	var outcome model.SyncOutcome
	if err := resp.DecodeData(&outcome); err != nil {
		log.Printf("WARN: Unexpected SUBMISSION_DETECTED response: %v", err)
		return
	}
	if outcome.CommitURL != "" {
		w.notifier.Notify(LevelSuccess, "Synced to GitHub!")
	}
}

// Run polls the source every interval until ctx is done. A change in the
// page fingerprint counts as a mutation; the number of nodes added is the
// growth in element count, or one when the page changed without growing.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastFingerprint string
	lastCount := 0
	for {
		if snap, err := w.source.Snapshot(ctx); err != nil {
			log.Printf("WARN: Failed to read page: %v", err)
		} else if fp := snap.Fingerprint(); fp != lastFingerprint {
			count := snap.ElementCount()
			added := count - lastCount
			if added <= 0 {
				added = 1
			}
			lastFingerprint, lastCount = fp, count
			w.OnMutation(ctx, added)
		}

		select {
		case <-ctx.Done():
			log.Println("INFO: Watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
