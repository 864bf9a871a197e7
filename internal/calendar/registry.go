package calendar

import (
	"bookable/pkg/config"
	"bookable/pkg/model"
)

// NewDefaultRegistry wires every provider whose credentials are configured.
// Providers without credentials are simply absent; connections pointing at
// them are skipped with a warning at query time.
func NewDefaultRegistry(cfg *config.Config) *Registry {
	registry := NewRegistry()

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google := NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.Log)
		registry.RegisterReader(model.ProviderGoogle, google)
		registry.RegisterWriter(model.ProviderGoogle, google)
	}

	if cfg.CalDAVUsername != "" && cfg.CalDAVPassword != "" {
		caldavClient, err := NewCalDAVClient(cfg.CalDAVEndpoint, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.Log)
		if err != nil {
			cfg.Log.Error("Failed to initialize CalDAV client", "error", err)
		} else {
			registry.RegisterReader(model.ProviderCalDAV, caldavClient)
			registry.RegisterWriter(model.ProviderCalDAV, caldavClient)
		}
	}

	if cfg.ZoomClientID != "" {
		registry.RegisterReader(model.ProviderZoom, NewZoomClient(cfg.Log))
	}

	if cfg.MSGraphClientID != "" {
		msgraph := NewMSGraphClient(cfg.Log)
		registry.RegisterReader(model.ProviderMSGraph, msgraph)
		registry.RegisterWriter(model.ProviderMSGraph, msgraph)
	}

	return registry
}
