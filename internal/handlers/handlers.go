// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"github.com/crestapp/crest/backend/internal/auth"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/feed"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/realtime"
	"github.com/crestapp/crest/backend/internal/trending"
)

// Handlers contains all HTTP handlers for the API.
type Handlers struct {
	auth       *auth.Service
	engagement *engagement.Service
	feed       *feed.Service
	trending   *trending.Service
	notifier   *notify.Notifier
	wsHandler  *realtime.Handler
}

// NewHandlers creates a handlers instance.
func NewHandlers(
	authService *auth.Service,
	engagementService *engagement.Service,
	feedService *feed.Service,
	trendingService *trending.Service,
	notifier *notify.Notifier,
) *Handlers {
	return &Handlers{
		auth:       authService,
		engagement: engagementService,
		feed:       feedService,
		trending:   trendingService,
		notifier:   notifier,
	}
}

// SetWebSocketHandler wires the realtime handler for live counter updates.
func (h *Handlers) SetWebSocketHandler(ws *realtime.Handler) {
	h.wsHandler = ws
}
