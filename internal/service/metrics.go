package service

import (
	"errors"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lifecycleTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Content lifecycle operations by area, action and result",
	},
	[]string{"area", "action", "result"},
)

// resultLabel classifies an operation outcome for metrics and logs
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrValidation):
		return "invalid"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
