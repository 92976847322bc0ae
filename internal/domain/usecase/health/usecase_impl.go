package health

import (
	"umbrella-reminder/internal/domain/gateway/db"
	"umbrella-reminder/internal/domain/gateway/ledger"
	"umbrella-reminder/internal/domain/model"
)

type healthUseCase struct {
	dbGateway      db.HealthDBGateway
	dispatchLedger ledger.DispatchLedger
	scheduler      SchedulerHealth
}

func NewHealthUseCase(dbGateway db.HealthDBGateway, dispatchLedger ledger.DispatchLedger, scheduler SchedulerHealth) UseCase {
	return &healthUseCase{
		dbGateway:      dbGateway,
		dispatchLedger: dispatchLedger,
		scheduler:      scheduler,
	}
}

func (useCase *healthUseCase) CheckHealth() model.HealthResponse {
	storeHealth := useCase.dbGateway.Health()
	ledgerHealth := useCase.dispatchLedger.Health()
	schedulerHealth := useCase.scheduler.Health()

	overallStatus := model.StatusUp
	if storeHealth.Status != model.StatusUp || ledgerHealth.Status != model.StatusUp || schedulerHealth.Status == model.StatusDown {
		overallStatus = model.StatusDown
	}

	return model.HealthResponse{
		Status:    overallStatus,
		Store:     storeHealth,
		Ledger:    ledgerHealth,
		Scheduler: schedulerHealth,
	}
}
