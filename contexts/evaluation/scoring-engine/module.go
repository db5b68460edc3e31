package scoringengine

import (
	"log/slog"

	httpadapter "symposium/contexts/evaluation/scoring-engine/adapters/http"
	"symposium/contexts/evaluation/scoring-engine/adapters/memory"
	"symposium/contexts/evaluation/scoring-engine/application/commands"
	"symposium/contexts/evaluation/scoring-engine/application/queries"
	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ratings        ports.RatingRepository
	Criteria       ports.CriterionReader
	Participations ports.ParticipationReader
	Scores         ports.ScoreWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ratingUseCase := commands.RatingUseCase{
		Ratings:        deps.Ratings,
		Criteria:       deps.Criteria,
		Participations: deps.Participations,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
	}
	recomputeUseCase := commands.RecomputeUseCase{
		Ratings:        deps.Ratings,
		Criteria:       deps.Criteria,
		Participations: deps.Participations,
		Scores:         deps.Scores,
		Logger:         deps.Logger,
	}
	leaderboardUseCase := queries.LeaderboardUseCase{
		Ratings:        deps.Ratings,
		Criteria:       deps.Criteria,
		Participations: deps.Participations,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ratings:      ratingUseCase,
			Recompute:    recomputeUseCase,
			Leaderboards: leaderboardUseCase,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Rating, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ratings:        store,
		Criteria:       store,
		Participations: store,
		Scores:         store,
		Clock:          store,
		IDGen:          store,
		Logger:         logger,
	})
	module.Store = store
	return module
}
