package handlers

import (
	"time"

	"nodepulse/config"
	"nodepulse/services"
)

type Handler struct {
	cfg       *config.Config
	registry  *services.Registry
	mongo     *services.MongoDBService
	startTime time.Time
}

func NewHandler(cfg *config.Config, registry *services.Registry, mongo *services.MongoDBService) *Handler {
	return &Handler{
		cfg:       cfg,
		registry:  registry,
		mongo:     mongo,
		startTime: time.Now(),
	}
}
