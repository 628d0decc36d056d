package config

import (
	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
	"github.com/zoff-tech/go-mobile-sdk/pkg/gateway"
)

// EndpointSettings identifies the collector and this device.
type EndpointSettings struct {
	Domain         string            `mapstructure:"domain" validate:"required,hostname_port|hostname"`
	EndpointID     string            `mapstructure:"endpoint_id" validate:"required"`
	DeviceUUID     string            `mapstructure:"device_uuid" validate:"required"`
	InstallationID string            `mapstructure:"installation_id"`
	Paths          map[string]string `mapstructure:"paths"` // keyed by event kind
}

// SDKSettings describes the host application for the request headers.
type SDKSettings struct {
	PackageName string `mapstructure:"package_name" validate:"required"`
	VersionName string `mapstructure:"version_name"`
	VersionCode string `mapstructure:"version_code"`
	OSName      string `mapstructure:"os_name"`
	OSVersion   string `mapstructure:"os_version"`
	Vendor      string `mapstructure:"vendor"`
	Model       string `mapstructure:"model"`
	SDKVersion  string `mapstructure:"sdk_version"`
}

// EndpointConfig converts the settings into the gateway's view.
func (e EndpointSettings) EndpointConfig() gateway.EndpointConfig {
	paths := make(map[event.Kind]string, len(e.Paths))
	for kind, path := range e.Paths {
		paths[event.Kind(kind)] = path
	}
	return gateway.EndpointConfig{
		EndpointID:     e.EndpointID,
		DeviceUUID:     e.DeviceUUID,
		InstallationID: e.InstallationID,
		Domain:         e.Domain,
		Paths:          paths,
	}
}

// ClientInfo converts the settings into request header data.
func (s SDKSettings) ClientInfo() gateway.ClientInfo {
	return gateway.ClientInfo{
		PackageName: s.PackageName,
		VersionName: s.VersionName,
		VersionCode: s.VersionCode,
		OSName:      s.OSName,
		OSVersion:   s.OSVersion,
		Vendor:      s.Vendor,
		Model:       s.Model,
		SDKVersion:  s.SDKVersion,
	}
}
