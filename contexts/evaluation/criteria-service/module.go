package criteriaservice

import (
	"log/slog"

	httpadapter "symposium/contexts/evaluation/criteria-service/adapters/http"
	"symposium/contexts/evaluation/criteria-service/adapters/memory"
	"symposium/contexts/evaluation/criteria-service/application/commands"
	"symposium/contexts/evaluation/criteria-service/application/queries"
	"symposium/contexts/evaluation/criteria-service/domain/entities"
	"symposium/contexts/evaluation/criteria-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Criteria ports.CriterionRepository
	Events   ports.EventStateReader
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	criterionUseCase := commands.CriterionUseCase{
		Criteria: deps.Criteria,
		Events:   deps.Events,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	criteriaUseCase := queries.CriteriaUseCase{
		Criteria: deps.Criteria,
	}
	return Module{
		Handler: httpadapter.Handler{
			Criteria: criterionUseCase,
			Queries:  criteriaUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Criterion, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Criteria: store,
		Events:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
