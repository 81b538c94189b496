// internal/app/system/workers/changestream.go
package workers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	messagestore "github.com/dalemusser/devhub/internal/app/store/messages"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Notifier is told which team's channel changed.
type Notifier interface {
	Notify(teamID string)
}

// ChangeStreamWatcher is a background worker that tails inserts into the
// messages collection and wakes local chat subscriptions, so messages
// written by other instances reach this instance's viewers.
//
// Change streams need a replica set. On a standalone server the worker
// logs once and exits; local sends still notify subscribers directly.
type ChangeStreamWatcher struct {
	coll     *mongo.Collection
	notifier Notifier
	log      *zap.Logger
	retry    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	resume bson.Raw
}

// NewChangeStreamWatcher creates the worker.
//
// Parameters:
//   - db: database holding the messages collection
//   - n: receives one Notify per inserted message (usually the chat hub)
//   - logger: zap logger for logging
//   - retry: pause before reopening a stream that failed (e.g., 5 seconds)
func NewChangeStreamWatcher(db *mongo.Database, n Notifier, logger *zap.Logger, retry time.Duration) *ChangeStreamWatcher {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChangeStreamWatcher{
		coll:     db.Collection(messagestore.CollectionName),
		notifier: n,
		log:      logger,
		retry:    retry,
		ctx:      ctx,
		cancel:   cancel,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching in the background.
func (w *ChangeStreamWatcher) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("message change stream watcher started",
		zap.String("collection", w.coll.Name()),
		zap.Duration("retry", w.retry))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ChangeStreamWatcher) Stop() {
	close(w.stopCh)
	w.cancel()
	w.wg.Wait()
	w.log.Info("message change stream watcher stopped")
}

func (w *ChangeStreamWatcher) run() {
	defer w.wg.Done()

	for {
		err := w.watch()
		switch {
		case err == nil, w.ctx.Err() != nil:
			return
		case ChangeStreamsUnsupported(err):
			w.log.Info("change streams not supported by this deployment; cross-instance chat updates disabled",
				zap.Error(err))
			return
		default:
			w.log.Warn("message change stream failed; reopening", zap.Error(err))
		}

		select {
		case <-w.stopCh:
			return
		case <-time.After(w.retry):
		}
	}
}

// insertEvent is the part of a change event the watcher reads.
type insertEvent struct {
	FullDocument struct {
		TeamID string `bson:"team_id"`
	} `bson:"fullDocument"`
}

func (w *ChangeStreamWatcher) watch() error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
		{{Key: "$project", Value: bson.D{{Key: "fullDocument.team_id", Value: 1}}}},
	}
	opts := options.ChangeStream()
	if tok := w.resumeToken(); tok != nil {
		opts.SetResumeAfter(tok)
	}

	stream, err := w.coll.Watch(w.ctx, pipeline, opts)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(w.ctx) {
		var ev insertEvent
		if err := stream.Decode(&ev); err != nil {
			w.log.Warn("undecodable change event", zap.Error(err))
			continue
		}
		w.setResumeToken(stream.ResumeToken())
		if ev.FullDocument.TeamID != "" {
			w.notifier.Notify(ev.FullDocument.TeamID)
		}
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *ChangeStreamWatcher) resumeToken() bson.Raw {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resume
}

func (w *ChangeStreamWatcher) setResumeToken(tok bson.Raw) {
	if tok == nil {
		return
	}
	w.mu.Lock()
	w.resume = append(bson.Raw(nil), tok...)
	w.mu.Unlock()
}

// ChangeStreamsUnsupported reports whether err means the server cannot
// run change streams at all (standalone mongod, or a storage engine
// without majority read concern), as opposed to a transient failure.
func ChangeStreamsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 40573, // $changeStream only supported on replica sets
			40324, // unrecognized pipeline stage
			148:   // majority read concern not enabled
			return true
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(40573) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "changestream") && strings.Contains(msg, "replica set")
}
