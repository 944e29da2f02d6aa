// Package api — configuration management endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/platesense/platesense/internal/config"
)

// configMu serialises writes to the config file.
var configMu sync.Mutex

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the current (running) configuration.
// Sensitive keys are excluded via json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: config.ConfigFilePath(),
		},
	})
}

// handleUpdateConfig merges the provided partial configuration into the
// running config, persists it to disk, and returns the updated config.
// Engine constant changes take effect on the next server start.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	configMu.Lock()
	defer configMu.Unlock()

	mergeConfig(s.cfg, &incoming)

	cfgPath := config.ConfigFilePath()
	if err := config.SaveToFile(s.cfg, cfgPath); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: cfgPath,
		},
	})
}

// handleGetConfigKeys returns the status of all sensitive API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	keys := config.CheckAPIKeys(s.cfg)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    keys,
	})
}

// mergeConfig copies non-zero/non-empty values from src into dst.
func mergeConfig(dst, src *config.Config) {
	// Engine
	if src.Engine.AssumedPrincipalPayment != 0 {
		dst.Engine.AssumedPrincipalPayment = src.Engine.AssumedPrincipalPayment
	}
	if src.Engine.AfterTaxCashFlowFactor != 0 {
		dst.Engine.AfterTaxCashFlowFactor = src.Engine.AfterTaxCashFlowFactor
	}
	if src.Engine.MultiplierMin != 0 {
		dst.Engine.MultiplierMin = src.Engine.MultiplierMin
	}
	if src.Engine.MultiplierMax != 0 {
		dst.Engine.MultiplierMax = src.Engine.MultiplierMax
	}
	if src.Engine.MultiplierStep != 0 {
		dst.Engine.MultiplierStep = src.Engine.MultiplierStep
	}
	if src.Engine.MultiplierDefault != 0 {
		dst.Engine.MultiplierDefault = src.Engine.MultiplierDefault
	}

	// LLM
	if src.LLM.Primary != "" {
		dst.LLM.Primary = src.LLM.Primary
	}
	if src.LLM.OllamaURL != "" {
		dst.LLM.OllamaURL = src.LLM.OllamaURL
	}
	if src.LLM.Model != "" {
		dst.LLM.Model = src.LLM.Model
	}
	if src.LLM.Temperature != 0 {
		dst.LLM.Temperature = src.LLM.Temperature
	}
	if src.LLM.MaxTokens != 0 {
		dst.LLM.MaxTokens = src.LLM.MaxTokens
	}

	// Reviews
	if len(src.Reviews.Feeds) > 0 {
		dst.Reviews.Feeds = src.Reviews.Feeds
	}
	if len(src.Reviews.Pages) > 0 {
		dst.Reviews.Pages = src.Reviews.Pages
	}
	if src.Reviews.FetchLimit != 0 {
		dst.Reviews.FetchLimit = src.Reviews.FetchLimit
	}
	if src.Reviews.CacheTTL != 0 {
		dst.Reviews.CacheTTL = src.Reviews.CacheTTL
	}

	// API
	if src.API.Host != "" {
		dst.API.Host = src.API.Host
	}
	if src.API.Port != 0 {
		dst.API.Port = src.API.Port
	}
	if len(src.API.CORSOrigins) > 0 {
		dst.API.CORSOrigins = src.API.CORSOrigins
	}

	// Logging
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
}
