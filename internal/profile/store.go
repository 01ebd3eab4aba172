package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/visaflow/mcp-i765-filler/internal/logging"
)

const (
	storeDirPerm  = 0o750
	storeFilePerm = 0o640
)

// Store persists profiles as JSON documents, one file per profile id, under
// a single directory.
type Store struct {
	dir    string
	logger logging.Logger
	mu     sync.RWMutex
}

// NewStore creates a profile store rooted at dir, creating the directory if
// needed.
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("profile directory cannot be empty")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile directory: %w", err)
	}
	if err := os.MkdirAll(abs, storeDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	return &Store{dir: abs, logger: logger}, nil
}

// Dir returns the resolved storage directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) pathFor(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("profile id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid profile id: %s", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Create makes a fresh empty profile and persists it.
func (s *Store) Create() (*ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := New()
	if err := s.save(p); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", map[string]interface{}{"profile_id": p.Metadata.ID})
	return p, nil
}

// Load reads the profile with the given id.
func (s *Store) Load(id string) (*ApplicantProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(id)
}

func (s *Store) load(id string) (*ApplicantProfile, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile does not exist: %s", id)
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
	}
	var p ApplicantProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", id, err)
	}
	return &p, nil
}

// Save persists the profile, bumping its version.
func (s *Store) Save(p *ApplicantProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p)
}

func (s *Store) save(p *ApplicantProfile) error {
	path, err := s.pathFor(p.Metadata.ID)
	if err != nil {
		return err
	}
	p.Metadata.Version++
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.Metadata.ID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, storeFilePerm); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", p.Metadata.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to store profile %s: %w", p.Metadata.ID, err)
	}
	return nil
}

// Reset replaces the profile's content with a fresh empty instance. The id
// is kept so callers holding it stay valid; profiles are never deleted.
func (s *Store) Reset(id string) (*ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(id); err != nil {
		return nil, err
	}
	p := New()
	p.Metadata.ID = id
	if err := s.save(p); err != nil {
		return nil, err
	}
	s.logger.Info("profile reset", map[string]interface{}{"profile_id": id})
	return p, nil
}

// Export returns the profile's plain nested-object JSON projection.
func (s *Store) Export(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export profile %s: %w", id, err)
	}
	return data, nil
}

// Import restores a profile from an exported JSON projection. The embedded
// id is kept when present, otherwise a new one is generated; updatedAt is
// refreshed on every import.
func (s *Store) Import(data []byte) (*ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p ApplicantProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse imported profile: %w", err)
	}
	if p.Metadata.ID == "" {
		fresh := New()
		p.Metadata.ID = fresh.Metadata.ID
		p.Metadata.CreatedAt = fresh.Metadata.CreatedAt
	}
	if p.Metadata.Status == "" {
		p.Metadata.Status = StatusDraft
	}
	p.Touch()
	if err := s.save(&p); err != nil {
		return nil, err
	}
	s.logger.Info("profile imported", map[string]interface{}{"profile_id": p.Metadata.ID})
	return &p, nil
}

// SetField writes a single value into the profile at a dot-notation path
// and refreshes updatedAt.
func (s *Store) SetField(id, rawPath string, value interface{}) (*ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	doc, err := p.Document()
	if err != nil {
		return nil, err
	}
	if err := Set(doc, ParsePath(rawPath), value); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", rawPath, err)
	}
	if err := p.ApplyDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", rawPath, err)
	}
	p.Touch()
	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the ids of all stored profiles, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
