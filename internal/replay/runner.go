// Package replay runs saved transcripts through the lead pipeline offline.
// By default it only extracts and renders; with Deliver set every transcript
// goes through the full pipeline, webhook included.
package replay

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/autobroker/internal/email"
	"github.com/MikeSquared-Agency/autobroker/internal/processor"
	"github.com/MikeSquared-Agency/autobroker/internal/profile"
	"github.com/MikeSquared-Agency/autobroker/internal/transcript"
)

type Pipeline interface {
	Preview(c processor.Completion) (profile.VehicleProfile, email.Document)
	Process(ctx context.Context, c processor.Completion) (*processor.Result, error)
}

// SummaryPoster receives the end-of-run summary. slack.Poster satisfies it.
type SummaryPoster interface {
	PostThread(ctx context.Context, threadTS, text string) error
}

type Config struct {
	Dir          string
	SingleFile   string
	StatePath    string
	Language     profile.Language
	Extended     bool
	Deliver      bool
	Workers      int
	MinUserTurns int
}

// FileResult is the outcome for one transcript file.
type FileResult struct {
	Path           string                 `json:"path"`
	ConversationID string                 `json:"conversationId"`
	Profile        profile.VehicleProfile `json:"profile"`
	Subject        string                 `json:"subject"`
	Delivered      bool                   `json:"delivered"`
	Error          string                 `json:"error,omitempty"`
}

type Runner struct {
	cfg      Config
	pipeline Pipeline
	poster   SummaryPoster
	logger   *slog.Logger
}

func NewRunner(cfg Config, p Pipeline, logger *slog.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	return &Runner{cfg: cfg, pipeline: p, logger: logger}
}

// WithPoster posts the run summary to Slack instead of only logging it.
func (r *Runner) WithPoster(p SummaryPoster) *Runner {
	r.poster = p
	return r
}

// Run replays every unprocessed transcript and returns the results in file
// order. Failures on individual files are recorded, not returned.
func (r *Runner) Run(ctx context.Context) ([]FileResult, error) {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	files, err := r.discoverFiles()
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	files = slices.DeleteFunc(files, state.IsProcessed)
	r.logger.Info("files to replay", "total", len(files), "deliver", r.cfg.Deliver)

	var (
		mu      sync.Mutex
		results []FileResult
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for _, path := range files {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			res, ok := r.replayFile(gCtx, path)
			if res.Error != "" {
				state.AddError(fmt.Sprintf("%s: %s", path, res.Error))
			}
			if !ok {
				return nil
			}
			if res.Error == "" {
				state.MarkProcessed(path, res.Delivered)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	runErr := g.Wait()

	if err := state.Save(); err != nil {
		r.logger.Warn("failed to save replay state", "error", err)
	}
	slices.SortFunc(results, func(a, b FileResult) int { return strings.Compare(a.Path, b.Path) })
	r.postSummary(ctx, results)

	if runErr != nil {
		return results, fmt.Errorf("replay interrupted: %w", runErr)
	}
	return results, nil
}

// replayFile reports false when the file was skipped or could not be read.
// Only results without an error are marked processed, so failed deliveries
// are retried on the next run.
func (r *Runner) replayFile(ctx context.Context, path string) (FileResult, bool) {
	res := FileResult{Path: path, ConversationID: conversationID(path)}

	t, err := transcript.ParseFile(path)
	if err != nil {
		r.logger.Warn("failed to parse transcript", "path", path, "error", err)
		res.Error = err.Error()
		return res, false
	}
	if len(t.UserTurns()) < r.cfg.MinUserTurns {
		r.logger.Debug("skipping short transcript", "path", path, "user_turns", len(t.UserTurns()))
		return res, false
	}

	c := processor.Completion{
		ConversationID: res.ConversationID,
		Language:       r.cfg.Language,
		Sequence:       profile.SequenceFor(r.cfg.Extended),
		Transcript:     t,
	}

	if !r.cfg.Deliver {
		prof, doc := r.pipeline.Preview(c)
		res.Profile = prof
		res.Subject = doc.Subject
		return res, true
	}

	out, err := r.pipeline.Process(ctx, c)
	if out != nil {
		res.Profile = out.Profile
		res.Subject = out.Email.Subject
		res.Delivered = out.Delivered
	}
	if err != nil {
		r.logger.Error("replay delivery failed", "path", path, "error", err)
		res.Error = err.Error()
	}
	return res, true
}

func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		path := expandHome(r.cfg.SingleFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("single file not found: %s", path)
		}
		return []string{path}, nil
	}

	var files []string
	err := filepath.WalkDir(expandHome(r.cfg.Dir), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case ".json", ".jsonl":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// conversationID derives a stable id from the file name.
func conversationID(path string) string {
	base := filepath.Base(path)
	return "replay_" + strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *Runner) postSummary(ctx context.Context, results []FileResult) {
	if len(results) == 0 {
		return
	}
	text := FormatSummary(results, r.cfg.Deliver)
	if r.poster == nil {
		r.logger.Info("replay summary", "summary", text)
		return
	}
	if err := r.poster.PostThread(ctx, "", text); err != nil {
		r.logger.Warn("failed to post replay summary, logging instead", "error", err, "summary", text)
	}
}

// FormatSummary renders results grouped by brand, brands sorted.
func FormatSummary(results []FileResult, deliver bool) string {
	byBrand := make(map[string][]FileResult)
	for _, res := range results {
		brand := res.Profile.Get(profile.Brand)
		if brand == "" {
			brand = "unknown"
		}
		byBrand[brand] = append(byBrand[brand], res)
	}
	brands := make([]string, 0, len(byBrand))
	for b := range byBrand {
		brands = append(brands, b)
	}
	slices.Sort(brands)

	var sb strings.Builder
	mode := "dry run"
	if deliver {
		mode = "delivered"
	}
	fmt.Fprintf(&sb, "*Replay Summary* (%d transcripts, %s)\n", len(results), mode)

	for _, brand := range brands {
		group := byBrand[brand]
		fmt.Fprintf(&sb, "\n*%s* (%d)\n", brand, len(group))
		for _, res := range group {
			fmt.Fprintf(&sb, "  - %s: %d fields", filepath.Base(res.Path), res.Profile.Len())
			if model := res.Profile.Get(profile.Model); model != "" {
				fmt.Fprintf(&sb, ", %s", model)
			}
			if deliver && !res.Delivered {
				sb.WriteString(" (not delivered)")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
