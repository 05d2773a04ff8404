// Package containerd patches a containerd configuration file so image pulls
// for one upstream registry go through a local mirror.
//
// The patcher never reimplements containerd logic: the default configuration
// comes from containerd's own config-generation subcommand, and the patch is
// a line-oriented text edit that leaves every other section untouched.
package containerd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/containerops/mirrorctl/pkg/cmd/runner"
	"github.com/containerops/mirrorctl/pkg/ui/notify"
)

const configFileMode = 0o644

// Patcher ensures, backs up, validates, and patches a containerd
// configuration file.
type Patcher struct {
	runner runner.CommandRunner
	writer io.Writer
	now    func() time.Time
}

// NewPatcher creates a patcher that shells out through the given runner and
// writes notifications to the given writer.
func NewPatcher(run runner.CommandRunner, writer io.Writer) *Patcher {
	return &Patcher{
		runner: run,
		writer: writer,
		now:    time.Now,
	}
}

// Ensure guarantees a configuration file exists at path, generating
// containerd's default configuration if it is absent.
func (p *Patcher) Ensure(ctx context.Context, path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	notify.Generatef(p.writer, "generating default containerd configuration at %s", path)

	return p.generateDefault(ctx, path)
}

// Backup copies the configuration file to a sibling path suffixed with the
// current Unix timestamp and returns the backup path. The backup is never
// read back by the tool; it exists for manual operator recovery.
func (p *Patcher) Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}

	backupPath := fmt.Sprintf("%s.bak.%d", path, p.now().Unix())

	err = os.WriteFile(backupPath, data, configFileMode)
	if err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", backupPath, err)
	}

	return backupPath, nil
}

// EnsureValid validates the configuration file as TOML. An invalid file is
// archived under a .bad.<timestamp> suffix and replaced by a freshly
// generated default. Returns true when the file was regenerated.
func (p *Patcher) EnsureValid(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parseErr := validateTOML(data)
	if parseErr == nil {
		return false, nil
	}

	badPath := fmt.Sprintf("%s.bad.%d", path, p.now().Unix())

	notify.Warningf(p.writer,
		"%s is not valid TOML (%v), archiving it as %s and regenerating the default",
		path, parseErr, badPath)

	err = os.Rename(path, badPath)
	if err != nil {
		return false, fmt.Errorf("failed to archive invalid config to %s: %w", badPath, err)
	}

	err = p.generateDefault(ctx, path)
	if err != nil {
		return false, err
	}

	return true, nil
}

// Patch removes every existing mirror block for the upstream registry and
// appends a fresh one pointing at the endpoint. Running it again is a no-op
// apart from the block being rewritten: at most one block per upstream
// remains after patching.
func (p *Patcher) Patch(path, upstream, endpoint string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	stripped, removed := StripMirrorBlocks(string(data), upstream)
	if removed > 0 {
		notify.Infof(p.writer, "removed %d existing mirror block(s) for %s", removed, upstream)
	}

	patched := AppendMirrorBlock(stripped, upstream, endpoint)

	err = os.WriteFile(path, []byte(patched), configFileMode)
	if err != nil {
		return fmt.Errorf("failed to write patched config %s: %w", path, err)
	}

	return nil
}

// generateDefault writes containerd's default configuration to path.
func (p *Patcher) generateDefault(ctx context.Context, path string) error {
	result, err := p.runner.Run(ctx, "containerd", "config", "default")
	if err != nil {
		return fmt.Errorf("failed to generate default containerd config: %w", err)
	}

	if strings.TrimSpace(result.Stdout) == "" {
		return ErrEmptyDefaultConfig
	}

	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("failed to create config directory for %s: %w", path, err)
	}

	err = os.WriteFile(path, []byte(result.Stdout), configFileMode)
	if err != nil {
		return fmt.Errorf("failed to write default config %s: %w", path, err)
	}

	return nil
}

// validateTOML reports whether data parses as TOML.
func validateTOML(data []byte) error {
	var document map[string]any

	err := toml.Unmarshal(data, &document)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
