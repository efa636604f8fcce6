// Package service orchestrates research calls across the agent and the
// persistence collaborators.
package service

import (
	"github.com/quantrail/marketresearch/internal/agent"
	"github.com/quantrail/marketresearch/internal/config"
	"github.com/quantrail/marketresearch/internal/execlog"
	"github.com/quantrail/marketresearch/internal/store"
)

type Service struct {
	store   store.Store
	agent   *agent.Agent
	execLog execlog.Logger
	config  *config.Config
}

func New(db store.Store, researchAgent *agent.Agent, execLog execlog.Logger, cfg *config.Config) *Service {
	return &Service{
		store:   db,
		agent:   researchAgent,
		execLog: execLog,
		config:  cfg,
	}
}
