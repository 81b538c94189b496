// internal/app/resolver/resolver.go
// Package resolver turns member id sets into profile summaries, batching
// lookups to respect the store's per-query id ceiling.
package resolver

import (
	"context"
	"strings"
	"sync"

	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/dalemusser/devhub/internal/app/system/metrics"
	"github.com/dalemusser/devhub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the most ids sent in one membership query.
const ChunkSize = 10

// maxInFlight bounds concurrent chunk queries for very large batches.
const maxInFlight = 4

// SummaryFinder loads summaries for at most ChunkSize ids.
type SummaryFinder interface {
	FindSummaries(ctx context.Context, ids []string) ([]models.MemberSummary, error)
}

type Resolver struct {
	Users   SummaryFinder
	Metrics *metrics.Metrics
}

func New(users SummaryFinder, m *metrics.Metrics) *Resolver {
	return &Resolver{Users: users, Metrics: m}
}

// ResolveBatch returns a summary for every id that has a user record.
// Duplicate and blank ids are ignored; unknown ids are omitted, never an error.
func (r *Resolver) ResolveBatch(ctx context.Context, ids []string) (map[string]models.MemberSummary, error) {
	uniq := dedupe(ids)
	out := make(map[string]models.MemberSummary, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	chunks := chunk(uniq, ChunkSize)
	r.Metrics.ResolverBatch(len(uniq), len(chunks))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)
	for _, ch := range chunks {
		g.Go(func() error {
			found, err := r.Users.FindSummaries(gctx, ch)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, s := range found {
				out[s.ID] = s
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Store("resolve members", err)
	}
	return out, nil
}

// ResolveForTeams resolves the union of all members once and projects it
// back per team id (hex), keeping each team's member order and dropping
// ids that resolved to nothing.
func (r *Resolver) ResolveForTeams(ctx context.Context, teams []models.Team) (map[string][]models.MemberSummary, error) {
	var all []string
	for _, t := range teams {
		all = append(all, t.Members...)
	}
	found, err := r.ResolveBatch(ctx, all)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]models.MemberSummary, len(teams))
	for _, t := range teams {
		list := make([]models.MemberSummary, 0, len(t.Members))
		for _, id := range t.Members {
			if s, ok := found[id]; ok {
				list = append(list, s)
			}
		}
		out[t.ID.Hex()] = list
	}
	return out, nil
}

// Lookup returns the summary for id, or a placeholder named
// models.UnknownUserName when the id did not resolve.
func Lookup(summaries map[string]models.MemberSummary, id string) models.MemberSummary {
	if s, ok := summaries[id]; ok {
		return s
	}
	return models.MemberSummary{ID: id, Name: models.UnknownUserName}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
