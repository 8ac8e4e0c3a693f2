package identity

import (
	"os"
	"sync"

	"github.com/benmeehan/safezone-agent/pkg/file"
	"github.com/google/uuid"
)

// Identity holds the device's unique identifier and the family it belongs to.
type Identity struct {
	ID        string `json:"device_id,omitempty"`
	ChildName string `json:"child_name,omitempty"`
	FamilyID  string `json:"family_id,omitempty"`
}

// DeviceInfoInterface defines methods for managing device identity.
type DeviceInfoInterface interface {
	LoadDeviceInfo() error
	SaveDeviceID(deviceID string) error
	GetDeviceID() string
	GetDeviceIdentity() Identity
}

// DeviceInfo manages the device identity and its associated file operations.
type DeviceInfo struct {
	DeviceInfoFile string

	mu       sync.RWMutex
	identity Identity
	fileOps  file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) *DeviceInfo {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
	}
}

// LoadDeviceInfo reads the identity file. A device without an id gets a
// freshly generated one, which is written back so it stays stable.
func (d *DeviceInfo) LoadDeviceInfo() error {
	var loaded Identity
	err := d.fileOps.ReadJsonFile(d.DeviceInfoFile, &loaded)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	d.mu.Lock()
	d.identity = loaded
	d.mu.Unlock()

	if loaded.ID == "" {
		return d.SaveDeviceID(uuid.New().String())
	}
	return nil
}

// GetDeviceIdentity returns a copy of the current device Identity.
func (d *DeviceInfo) GetDeviceIdentity() Identity {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.identity
}

// GetDeviceID returns the current device ID.
func (d *DeviceInfo) GetDeviceID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.identity.ID
}

// SaveDeviceID updates the device ID and writes the identity back to the file.
func (d *DeviceInfo) SaveDeviceID(deviceID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	updated := d.identity
	updated.ID = deviceID
	if err := d.fileOps.WriteJsonFile(d.DeviceInfoFile, updated); err != nil {
		return err
	}
	d.identity = updated
	return nil
}
