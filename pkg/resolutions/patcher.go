package resolutions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/yarnpin/pkg/logger"
	"github.com/fulmenhq/yarnpin/pkg/manifest"
)

// Options configures a Patcher.
type Options struct {
	Root          string   // Working directory; defaults to the process cwd
	Target        string   // Target package folder, relative to Root
	SourcePath    string   // Source manifest, relative to Root unless absolute
	ManifestName  string   // Manifest file name inside Target
	Modules       []string // Pinned module identifiers, in order
	PatternPrefix string   // Resolution key prefix; defaults to DefaultPatternPrefix
	Indent        string   // Output indentation; "" writes compact JSON
}

// Result describes a prepared pinning.
type Result struct {
	Target        string
	ManifestPath  string
	SourceVersion string
	Version       string
	Overrides     OverrideMap
	Plan          Plan
	Patched       *manifest.Manifest
	Duration      time.Duration
}

// Patcher runs the load, compute, transform and persist pipeline for one target.
type Patcher struct {
	opts Options
}

// NewPatcher creates a Patcher. Options are normalized but not validated until Prepare.
func NewPatcher(opts Options) *Patcher {
	if opts.PatternPrefix == "" {
		opts.PatternPrefix = DefaultPatternPrefix
	}
	if opts.ManifestName == "" {
		opts.ManifestName = manifest.FileName
	}
	if opts.SourcePath == "" {
		opts.SourcePath = manifest.SourceFileName
	}
	return &Patcher{opts: opts}
}

// loaded holds everything read from disk for one invocation.
type loaded struct {
	target        string
	targetPath    string
	sourceVersion string
	version       string
	overrides     OverrideMap
	current       *manifest.Manifest
}

// load reads the source version, computes the overrides and loads the target.
// The missing argument check comes first so no file is opened without a target.
func (p *Patcher) load() (*loaded, error) {
	target := strings.TrimSpace(p.opts.Target)
	if target == "" {
		return nil, ErrMissingArgument
	}

	root, err := p.root()
	if err != nil {
		return nil, err
	}

	sourcePath := p.opts.SourcePath
	if !filepath.IsAbs(sourcePath) {
		sourcePath = filepath.Join(root, sourcePath)
	}

	sourceVersion, err := manifest.ReadSourceVersion(sourcePath)
	if err != nil {
		return nil, err
	}

	version, err := ComputeOverrideVersion(sourceVersion)
	if err != nil {
		return nil, err
	}
	logger.Debug("Computed override version",
		logger.String("source", sourceVersion),
		logger.String("override", version))

	targetPath := manifest.TargetPath(root, target, p.opts.ManifestName)
	current, err := manifest.Load(targetPath)
	if err != nil {
		return nil, err
	}

	return &loaded{
		target:        target,
		targetPath:    targetPath,
		sourceVersion: sourceVersion,
		version:       version,
		overrides:     BuildOverrideMapWithPrefix(p.opts.PatternPrefix, p.opts.Modules, version),
		current:       current,
	}, nil
}

// Prepare loads both manifests and computes the patched target without writing
// anything. Errors abort the pipeline before any file is touched.
func (p *Patcher) Prepare() (*Result, error) {
	start := time.Now()

	in, err := p.load()
	if err != nil {
		return nil, err
	}

	patched, plan, err := Patch(in.current, in.overrides, p.opts.Modules, p.opts.Indent)
	if err != nil {
		return nil, err
	}

	logger.Info("Prepared resolutions",
		logger.String("target", in.target),
		logger.String("version", in.version),
		logger.Int("resolutions", in.overrides.Len()),
		logger.Int("removed", len(plan.Removed)))

	return &Result{
		Target:        in.target,
		ManifestPath:  in.targetPath,
		SourceVersion: in.sourceVersion,
		Version:       in.version,
		Overrides:     in.overrides,
		Plan:          plan,
		Patched:       patched,
		Duration:      time.Since(start),
	}, nil
}

// Commit persists a prepared result over the target manifest.
func (p *Patcher) Commit(res *Result) error {
	if res == nil || res.Patched == nil {
		return fmt.Errorf("nothing to commit")
	}
	return manifest.Write(res.Patched)
}

// Run prepares and commits in one step.
func (p *Patcher) Run() (*Result, error) {
	res, err := p.Prepare()
	if err != nil {
		return nil, err
	}
	if err := p.Commit(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Verify checks the target manifest against the expected pinning without
// modifying it. Result.Patched holds the manifest as found on disk.
func (p *Patcher) Verify() (*Result, []Finding, error) {
	start := time.Now()

	in, err := p.load()
	if err != nil {
		return nil, nil, err
	}

	res := &Result{
		Target:        in.target,
		ManifestPath:  in.targetPath,
		SourceVersion: in.sourceVersion,
		Version:       in.version,
		Overrides:     in.overrides,
		Patched:       in.current,
		Duration:      time.Since(start),
	}
	return res, Verify(in.current, in.overrides, p.opts.Modules), nil
}

func (p *Patcher) root() (string, error) {
	if p.opts.Root != "" {
		return p.opts.Root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
