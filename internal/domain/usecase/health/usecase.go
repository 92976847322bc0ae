package health

import "umbrella-reminder/internal/domain/model"

type UseCase interface {
	CheckHealth() model.HealthResponse
}

// SchedulerHealth reports the state of the dispatch scheduler
type SchedulerHealth interface {
	Health() model.ComponentHealthStatus
}
