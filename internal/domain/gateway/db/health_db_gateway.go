package db

import "umbrella-reminder/internal/domain/model"

type HealthDBGateway interface {
	Health() model.ComponentHealthStatus
}
