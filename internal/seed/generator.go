package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okian/rankscope/pkg/logger"
)

const (
	filePermission = 0o644
	dirPermission  = 0o755
	// gapChance is the probability a day has no sample at all.
	gapChance = 0.05
	// shockChance is the probability of a one-day jump of several steps.
	shockChance = 0.02
	shockScale  = 6
)

// Generate renders one CSV file per domain. Ranks follow a multiplicative
// random walk clamped to [1, 10*BaseRank]; a few days are left out so the
// series exercise gap handling.
func Generate(cfg Config) ([]File, error) {
	return generateAt(cfg, time.Now())
}

func generateAt(cfg Config, now time.Time) ([]File, error) {
	cfg, err := cfg.normalized(now)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(cfg.Domains))
	for i, domain := range cfg.Domains {
		// One stream per domain keeps a series stable when others are added.
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)+1))
		files = append(files, generateDomain(cfg, domain, i, rng))
	}
	return files, nil
}

func generateDomain(cfg Config, domain string, index int, rng *rand.Rand) File {
	var b strings.Builder
	ceiling := float64(cfg.BaseRank) * 10
	rank := float64(cfg.BaseRank) * (0.5 + float64(index))
	rows := 0

	for day := 0; day < cfg.Days; day++ {
		date := cfg.Start.AddDate(0, 0, day)

		drift := rng.NormFloat64() * cfg.Step
		if rng.Float64() < shockChance {
			drift *= shockScale
		}
		rank = math.Min(math.Max(rank*math.Exp(drift), 1), ceiling)

		if rng.Float64() < gapChance {
			continue
		}

		token := date.Format(dateLayout)
		if cfg.MonthTokens && date.Day() == 1 {
			token = token[:7]
		}
		b.WriteString(token)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(math.Round(rank))))
		b.WriteByte('\n')
		rows++
	}

	return File{
		Name:    domain + ".csv",
		Domain:  domain,
		Content: b.String(),
		Rows:    rows,
	}
}

// WriteDir writes files into dir, creating it when missing, and returns the
// written paths in order.
func WriteDir(ctx context.Context, dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWriteFailure, dir, err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return paths, fmt.Errorf("%w: %w", ErrWriteFailure, err)
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), filePermission); err != nil {
			return paths, fmt.Errorf("%w: %s: %w", ErrWriteFailure, path, err)
		}
		paths = append(paths, path)
		logger.Get().Debug(ctx, "seed file written", logger.String("path", path), logger.Int("rows", f.Rows))
	}
	return paths, nil
}
