// Package dedup merges leads submitted more than once for the same vehicle by
// the same buyer. Merged leads keep their row and point at the survivor.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultWindow bounds how far apart two submissions can be and still count
// as duplicates.
const DefaultWindow = 7 * 24 * time.Hour

// Result summarises one dedup run. With Execute false nothing is written.
type Result struct {
	Window     string          `json:"window"`
	Execute    bool            `json:"execute"`
	Clusters   int             `json:"clusters"`
	TotalLeads int             `json:"total_leads"`
	Deduped    int             `json:"deduped"`
	Survivors  int             `json:"survivors"`
	Details    []ClusterDetail `json:"details,omitempty"`
}

type ClusterDetail struct {
	SurvivorID uuid.UUID   `json:"survivor_id"`
	DedupedIDs []uuid.UUID `json:"deduped_ids"`
	Size       int         `json:"size"`
}

type Deduplicator struct {
	pool    *pgxpool.Pool
	scanner *Scanner
	ranker  *Ranker
	logger  *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		pool:    pool,
		scanner: NewScanner(pool),
		ranker:  NewRanker(pool),
		logger:  logger,
	}
}

// DeduplicateLeads finds duplicate clusters and, when execute is set, marks
// every non-survivor as deduped.
func (d *Deduplicator) DeduplicateLeads(ctx context.Context, window time.Duration, execute bool) (*Result, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	d.logger.Info("starting lead deduplication", "window", window, "execute", execute)

	pairs, err := d.scanner.FindLeadDuplicates(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	d.logger.Info("found duplicate pairs", "count", len(pairs))

	clusters := clusterPairs(pairs)
	result := &Result{
		Window:   window.String(),
		Execute:  execute,
		Clusters: len(clusters),
	}

	for _, cluster := range clusters {
		result.TotalLeads += len(cluster)

		survivorID, err := d.ranker.RankLeads(ctx, cluster)
		if err != nil {
			d.logger.Error("failed to rank cluster", "cluster", cluster, "error", err)
			continue
		}
		deduped := slices.DeleteFunc(slices.Clone(cluster), func(id uuid.UUID) bool { return id == survivorID })

		if execute {
			if err := d.markDeduped(ctx, deduped, survivorID); err != nil {
				d.logger.Error("failed to mark leads as deduped", "survivor", survivorID, "deduped", deduped, "error", err)
				continue
			}
		}

		result.Survivors++
		result.Deduped += len(deduped)
		result.Details = append(result.Details, ClusterDetail{
			SurvivorID: survivorID,
			DedupedIDs: deduped,
			Size:       len(cluster),
		})
	}

	d.logger.Info("lead deduplication completed", "survivors", result.Survivors, "deduped", result.Deduped)
	return result, nil
}

// clusterPairs groups pairs into connected components (union-find). Each
// cluster is sorted so output is deterministic; singletons never appear.
func clusterPairs(pairs []DuplicatePair) [][]uuid.UUID {
	if len(pairs) == 0 {
		return nil
	}

	parent := make(map[uuid.UUID]uuid.UUID)
	for _, p := range pairs {
		for _, id := range []uuid.UUID{p.ID1, p.ID2} {
			if _, ok := parent[id]; !ok {
				parent[id] = id
			}
		}
	}

	var find func(uuid.UUID) uuid.UUID
	find = func(id uuid.UUID) uuid.UUID {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	for _, p := range pairs {
		if r1, r2 := find(p.ID1), find(p.ID2); r1 != r2 {
			parent[r2] = r1
		}
	}

	groups := make(map[uuid.UUID][]uuid.UUID)
	for id := range parent {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	var clusters [][]uuid.UUID
	for _, cluster := range groups {
		if len(cluster) > 1 {
			slices.SortFunc(cluster, compareIDs)
			clusters = append(clusters, cluster)
		}
	}
	slices.SortFunc(clusters, func(a, b []uuid.UUID) int { return compareIDs(a[0], b[0]) })
	return clusters
}

func compareIDs(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}

func (d *Deduplicator) markDeduped(ctx context.Context, ids []uuid.UUID, survivorID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.pool.Exec(ctx, `
		UPDATE leads
		SET deduped_at = now(), dedup_survivor_id = $1, updated_at = now()
		WHERE id = ANY($2)`, survivorID, ids)
	if err != nil {
		return fmt.Errorf("update leads: %w", err)
	}
	return nil
}
