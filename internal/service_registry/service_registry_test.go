package service_registry

import (
	"errors"
	"testing"

	"github.com/benmeehan/safezone-agent/internal/mocks"
	"github.com/benmeehan/safezone-agent/internal/stores"
	"github.com/benmeehan/safezone-agent/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingService struct {
	name     string
	log      *[]string
	startErr error
	stopErr  error
}

func (s *recordingService) Start() error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}

func (s *recordingService) Stop() error {
	*s.log = append(*s.log, "stop "+s.name)
	return s.stopErr
}

func TestServiceRegistry_StartStopOrder(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(new(mocks.MockMQTTClient), zerolog.Nop())
	sr.RegisterService("a", &recordingService{name: "a", log: &log})
	sr.RegisterService("b", &recordingService{name: "b", log: &log})
	sr.RegisterService("a", &recordingService{name: "duplicate", log: &log})

	assert.Equal(t, []string{"a", "b"}, sr.Names())
	assert.NoError(t, sr.StartServices())
	assert.NoError(t, sr.StopServices())

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
}

func TestServiceRegistry_StartFailureRollsBack(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(new(mocks.MockMQTTClient), zerolog.Nop())
	sr.RegisterService("a", &recordingService{name: "a", log: &log})
	sr.RegisterService("b", &recordingService{name: "b", log: &log})
	sr.RegisterService("c", &recordingService{name: "c", log: &log, startErr: errors.New("boom")})
	sr.RegisterService("d", &recordingService{name: "d", log: &log})

	err := sr.StartServices()
	assert.ErrorContains(t, err, "failed to start c")

	assert.Equal(t, []string{"start a", "start b", "start c", "stop b", "stop a"}, log)
}

func TestServiceRegistry_StopJoinsErrors(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(new(mocks.MockMQTTClient), zerolog.Nop())
	sr.RegisterService("a", &recordingService{name: "a", log: &log, stopErr: errors.New("a failed")})
	sr.RegisterService("b", &recordingService{name: "b", log: &log, stopErr: errors.New("b failed")})

	err := sr.StopServices()
	assert.ErrorContains(t, err, "failed to stop a")
	assert.ErrorContains(t, err, "failed to stop b")
	assert.Equal(t, []string{"stop b", "stop a"}, log)
}

func TestServiceRegistry_RegisterServices(t *testing.T) {
	config := &utils.Config{}
	config.Services.ZoneSync.Enabled = true
	config.Services.ZoneSync.Topic = "zones"
	config.ApplyDefaults()

	sr := NewServiceRegistry(new(mocks.MockMQTTClient), zerolog.Nop())
	sr.RegisterServices(config, new(mocks.MockDeviceInfo), new(mocks.MockMonitor),
		stores.NewFileZoneStore("zones.yaml", new(mocks.MockFileOperations)))

	assert.Equal(t, []string{"zone_sync", "safezone_monitor"}, sr.Names())

	config.Services.StatusReporter.Enabled = true
	sr = NewServiceRegistry(new(mocks.MockMQTTClient), zerolog.Nop())
	sr.RegisterServices(config, new(mocks.MockDeviceInfo), new(mocks.MockMonitor),
		stores.NewFileZoneStore("zones.yaml", new(mocks.MockFileOperations)))

	assert.Equal(t, []string{"zone_sync", "safezone_monitor", "status_reporter"}, sr.Names())
}
