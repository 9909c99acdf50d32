package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/platewise/platewise/pkg/errors"
)

const configFilename = "config.enc"

// Store persists the encrypted configuration document under the per-user
// config directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir selects the default
// platewise config directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the per-user platewise config directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeConfigInvalid, "cannot resolve user config directory")
	}
	return filepath.Join(base, "platewise"), nil
}

// Dir returns the directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the config file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, configFilename)
}

// Exists reports whether a configuration has been saved.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Save serializes, encrypts and writes the configuration. The Payment field
// never reaches the document: it is excluded at the type level.
func (s *Store) Save(cfg UserConfiguration, passphrase string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	doc, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to serialize configuration")
	}

	c, err := newCrypter(passphrase)
	if err != nil {
		return err
	}
	encrypted, err := c.encrypt(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to encrypt configuration")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create config directory")
	}
	if err := os.WriteFile(s.Path(), encrypted, 0o600); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write configuration")
	}
	return nil
}

// Load reads, decrypts and validates the configuration, applying schema
// migrations when the stored version is behind CurrentVersion.
func (s *Store) Load(passphrase string) (UserConfiguration, error) {
	if !s.Exists() {
		return UserConfiguration{}, errors.ConfigNotFound()
	}

	encrypted, err := os.ReadFile(s.Path())
	if err != nil {
		return UserConfiguration{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read configuration")
	}

	c, err := newCrypter(passphrase)
	if err != nil {
		return UserConfiguration{}, err
	}
	doc, err := c.decrypt(encrypted)
	if err != nil {
		return UserConfiguration{}, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return UserConfiguration{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse configuration")
	}
	raw = migrate(raw)

	migrated, err := yaml.Marshal(raw)
	if err != nil {
		return UserConfiguration{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to re-serialize migrated configuration")
	}

	var cfg UserConfiguration
	if err := yaml.Unmarshal(migrated, &cfg); err != nil {
		return UserConfiguration{}, errors.Wrap(err, errors.ErrCodeConfigInvalid, "configuration does not match schema")
	}
	if err := cfg.Validate(); err != nil {
		return UserConfiguration{}, err
	}
	return cfg, nil
}

// Delete removes the config file. Returns true when a file was deleted.
func (s *Store) Delete() (bool, error) {
	if !s.Exists() {
		return false, nil
	}
	if err := os.Remove(s.Path()); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to delete configuration")
	}
	return true, nil
}

// migrate applies schema migrations sequentially until the document reaches
// CurrentVersion.
func migrate(raw map[string]any) map[string]any {
	version := 1
	if v, ok := raw["version"].(int); ok {
		version = v
	}

	for target := version + 1; target <= CurrentVersion; target++ {
		switch target {
		case 2:
			raw = migrateV1toV2(raw)
		}
		raw["version"] = target
	}
	return raw
}

// migrateV1toV2 lifts the original single-vehicle schema into the vehicle
// list, marking the sole entry as default.
func migrateV1toV2(raw map[string]any) map[string]any {
	v, hasSingle := raw["vehicle"]
	if _, hasList := raw["vehicles"]; hasSingle && !hasList {
		delete(raw, "vehicle")
		raw["vehicles"] = []any{
			map[string]any{
				"vehicle":    v,
				"is_default": true,
				"added_at":   raw["created_at"],
			},
		}
	}
	return raw
}
