package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/cleverty/endpoint-provisioner/common"
	"github.com/cleverty/endpoint-provisioner/interfaces"
)

const (
	optionsTable = "options"
	identityKey  = "id"
	passwordKey  = "password"

	defaultFileMode fs.FileMode = 0o600
)

// Controller starts and restarts the engine's network service.
// interfaces.ServiceLauncher satisfies it.
type Controller interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
}

// ConfigDir edits the engine's configuration directory.
type ConfigDir struct {
	dir  string
	app  string
	ctrl Controller
	log  *slog.Logger

	mu sync.Mutex
}

var _ interfaces.RemoteConfig = (*ConfigDir)(nil)

func NewConfigDir(dir, app string, ctrl Controller, log *slog.Logger) *ConfigDir {
	return &ConfigDir{dir: dir, app: app, ctrl: ctrl, log: log}
}

func (c *ConfigDir) mainFile() string   { return filepath.Join(c.dir, c.app+".toml") }
func (c *ConfigDir) syncedFile() string { return filepath.Join(c.dir, c.app+"2.toml") }
func (c *ConfigDir) localFile() string  { return filepath.Join(c.dir, c.app+"_local.toml") }

func (c *ConfigDir) SetOption(ctx context.Context, key interfaces.OptionKey, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return c.setOption(c.syncedFile(), key, value)
}

func (c *ConfigDir) GetOption(ctx context.Context, key interfaces.OptionKey) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return c.getOption(c.syncedFile(), key)
}

func (c *ConfigDir) SetLocalOption(ctx context.Context, key interfaces.OptionKey, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return c.setOption(c.localFile(), key, value)
}

func (c *ConfigDir) GetLocalOption(ctx context.Context, key interfaces.OptionKey) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return c.getOption(c.localFile(), key)
}

// SetCredential stores the permanent password. The engine encrypts plain
// values the next time it loads its configuration.
func (c *ConfigDir) SetCredential(ctx context.Context, value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty credential", interfaces.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load(c.mainFile())
	if err != nil {
		return err
	}
	doc[passwordKey] = value
	if err := c.save(c.mainFile(), doc); err != nil {
		return err
	}

	c.log.Info("Updated engine credential")
	return nil
}

func (c *ConfigDir) GetIdentity(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load(c.mainFile())
	if err != nil {
		return "", err
	}
	return stringValue(doc[identityKey]), nil
}

func (c *ConfigDir) StartNetworkService(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.ctrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start network service: %w", err)
	}
	return nil
}

func (c *ConfigDir) RestartConnection(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.ctrl.Restart(ctx); err != nil {
		return fmt.Errorf("failed to restart connection: %w", err)
	}
	c.log.Info("Restarted engine connection")
	return nil
}

func (c *ConfigDir) setOption(path string, key interfaces.OptionKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load(path)
	if err != nil {
		return err
	}

	options, _ := doc[optionsTable].(map[string]any)
	if options == nil {
		options = map[string]any{}
	}
	if current, ok := options[string(key)]; ok && stringValue(current) == value {
		return nil
	}
	options[string(key)] = value
	doc[optionsTable] = options

	if err := c.save(path, doc); err != nil {
		return err
	}

	c.log.Debug("Set engine option",
		slog.String("key", string(key)),
		slog.String("file", filepath.Base(path)))
	return nil
}

func (c *ConfigDir) getOption(path string, key interfaces.OptionKey) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.load(path)
	if err != nil {
		return "", err
	}
	options, _ := doc[optionsTable].(map[string]any)
	return stringValue(options[string(key)]), nil
}

func (c *ConfigDir) ready() error {
	info, err := os.Stat(c.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: config directory %s unavailable", interfaces.ErrEngineNotReady, c.dir)
	}
	return nil
}

// load returns an empty document for files the engine has not written yet.
func (c *ConfigDir) load(path string) (map[string]any, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	doc := map[string]any{}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func (c *ConfigDir) save(path string, doc map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	mode := defaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return common.WriteFileAtomic(path, buf.Bytes(), mode)
}

func validateKey(key interfaces.OptionKey) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", interfaces.ErrInvalidOptionKey)
	}
	if _, ok := interfaces.KnownOptions[key]; !ok {
		return fmt.Errorf("%w: %q", interfaces.ErrInvalidOptionKey, key)
	}
	return nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
