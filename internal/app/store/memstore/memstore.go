// Package memstore is an in-process implementation of the team, user, and
// message stores. It follows the same contracts as the Mongo stores
// (set semantics, guarded writes, sentinel errors) and backs the service
// and handler tests.
package memstore

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/devhub/internal/domain/models"
)

// DB bundles the three in-memory stores.
type DB struct {
	Teams    *Teams
	Users    *Users
	Messages *Messages
}

// New returns an empty DB.
func New() *DB {
	return &DB{
		Teams:    &Teams{teams: map[string]models.Team{}},
		Users:    &Users{users: map[string]models.User{}},
		Messages: &Messages{byTeam: map[string][]models.Message{}, now: defaultNow},
	}
}

func defaultNow() time.Time { return time.Now().UTC() }

// failer lets tests make every call of a store fail.
type failer struct {
	mu  sync.Mutex
	err error
}

// Fail makes subsequent calls return err. Pass nil to clear.
func (f *failer) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *failer) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// counter counts calls of one kind.
type counter struct{ n atomic.Int64 }

func (c *counter) inc()         { c.n.Add(1) }
func (c *counter) Value() int64 { return c.n.Load() }
func (c *counter) Reset()       { c.n.Store(0) }

func cloneTeam(t models.Team) models.Team {
	t.Members = slices.Clone(t.Members)
	t.Invites = slices.Clone(t.Invites)
	if t.Members == nil {
		t.Members = []string{}
	}
	if t.Invites == nil {
		t.Invites = []string{}
	}
	return t
}

func addToSet(set []string, id string) []string {
	if slices.Contains(set, id) {
		return set
	}
	return append(set, id)
}

func pull(set []string, id string) []string {
	return slices.DeleteFunc(set, func(v string) bool { return v == id })
}

func sortNewestFirst(ts []models.Team) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID.Hex() > ts[j].ID.Hex()
	})
}
