package fixture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher downloads a remote archive to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Extractor expands a local archive into a directory.
type Extractor interface {
	Extract(archive, destDir string) error
}

// logger interface for dependency injection.
type logger interface {
	Print(format string, args ...any)
	Warn(format string, args ...any)
}

// Preparer runs delete-fetch-extract cycles for every archive of every
// matched rule. Each cycle removes the archive's cleanup paths first, so
// repeated runs converge to the same filesystem state.
type Preparer struct {
	manifest  *Manifest
	dataDir   string
	dryRun    bool
	fetcher   Fetcher
	extractor Extractor
	log       logger
}

// Params holds configuration for creating a Preparer.
type Params struct {
	Manifest  *Manifest
	DataDir   string    // directory archives are fetched into and extracted under
	DryRun    bool      // log planned side effects without performing them
	Fetcher   Fetcher   // nil uses the HTTP fetcher
	Extractor Extractor // nil uses the tar.gz extractor
}

// NewPreparer creates a Preparer from the given Params.
func NewPreparer(p Params, log logger) *Preparer {
	fetcher := p.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(log)
	}
	extractor := p.Extractor
	if extractor == nil {
		extractor = &TarGzExtractor{}
	}
	dataDir := p.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	return &Preparer{
		manifest:  p.Manifest,
		dataDir:   dataDir,
		dryRun:    p.DryRun,
		fetcher:   fetcher,
		extractor: extractor,
		log:       log,
	}
}

// Prepare ensures every fixture required by the model name. Rules are
// evaluated independently: a name matching several substrings runs every
// matched rule's archives in manifest order. First failure aborts, no
// retry, no rollback of already removed paths.
func (p *Preparer) Prepare(ctx context.Context, modelName string) error {
	matched := p.manifest.Match(modelName)
	if len(matched) == 0 {
		p.log.Print("no fixture rules match model %q, skipping archive preparation", modelName)
		return nil
	}

	for _, rule := range matched {
		p.log.Print("model %q matches fixture rule %q", modelName, rule.Match)
		for _, a := range rule.Archives {
			if err := p.ensure(ctx, a); err != nil {
				return fmt.Errorf("ensure %s: %w", a.Name, err)
			}
		}
	}
	return nil
}

// ensure runs one delete-fetch-extract cycle for a single archive.
func (p *Preparer) ensure(ctx context.Context, a Archive) error {
	if p.dryRun {
		p.log.Print("[dry-run] would remove %s, fetch %s and extract %s",
			strings.Join(a.Cleanup, ", "), a.URL, a.File)
		return nil
	}

	for _, c := range a.Cleanup {
		target := filepath.Join(p.dataDir, c)
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	}

	dest := filepath.Join(p.dataDir, a.File)
	p.log.Print("fetching %s", a.URL)
	if err := p.fetcher.Fetch(ctx, a.URL, dest); err != nil {
		return fmt.Errorf("fetch %s: %w", a.URL, err)
	}

	p.log.Print("extracting %s", a.File)
	if err := p.extractor.Extract(dest, p.dataDir); err != nil {
		return fmt.Errorf("extract %s: %w", dest, err)
	}

	return nil
}
