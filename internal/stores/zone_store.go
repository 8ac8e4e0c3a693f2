package stores

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/file"
)

// ZoneStore gives read access to the parent-configured safe zones and settings.
type ZoneStore interface {
	GetSafeZones() ([]models.SafeZone, error)
	GetSettings() (models.Settings, error)
}

// FileZoneStore keeps the zone document in a YAML file. Every read goes to
// disk so edits are visible on the next location sample.
type FileZoneStore struct {
	filePath   string
	fileClient file.FileOperations
	mu         sync.RWMutex
}

// NewFileZoneStore creates a store backed by the given YAML file.
func NewFileZoneStore(filePath string, fileClient file.FileOperations) *FileZoneStore {
	return &FileZoneStore{
		filePath:   filePath,
		fileClient: fileClient,
	}
}

// Load reads the full zone document. A missing or empty file is an empty
// document with alerts enabled.
func (s *FileZoneStore) Load() (models.ZoneDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := models.ZoneDocument{Settings: models.Settings{SafeZoneAlerts: true}}
	if err := s.fileClient.ReadYamlFile(s.filePath, &doc); err != nil {
		if os.IsNotExist(err) || errors.Is(err, io.EOF) {
			return models.ZoneDocument{Settings: models.Settings{SafeZoneAlerts: true}}, nil
		}
		return models.ZoneDocument{}, fmt.Errorf("failed to read zone document %s: %w", s.filePath, err)
	}
	return doc, nil
}

// Save replaces the zone document atomically.
func (s *FileZoneStore) Save(doc models.ZoneDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fileClient.WriteYamlFile(s.filePath, doc); err != nil {
		return fmt.Errorf("failed to write zone document %s: %w", s.filePath, err)
	}
	return nil
}

// GetSafeZones returns every configured zone, including inactive and invalid ones.
func (s *FileZoneStore) GetSafeZones() ([]models.SafeZone, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Zones, nil
}

// GetSettings returns the global safe-zone settings.
func (s *FileZoneStore) GetSettings() (models.Settings, error) {
	doc, err := s.Load()
	if err != nil {
		return models.Settings{}, err
	}
	return doc.Settings, nil
}
