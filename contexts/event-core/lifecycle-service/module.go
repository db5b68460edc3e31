package lifecycleservice

import (
	"log/slog"

	httpadapter "symposium/contexts/event-core/lifecycle-service/adapters/http"
	"symposium/contexts/event-core/lifecycle-service/adapters/memory"
	"symposium/contexts/event-core/lifecycle-service/application/commands"
	"symposium/contexts/event-core/lifecycle-service/application/queries"
	"symposium/contexts/event-core/lifecycle-service/application/workers"
	"symposium/contexts/event-core/lifecycle-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.NotificationRelay
	Store   *memory.Store
}

type Dependencies struct {
	Events     ports.EventRepository
	History    ports.StateChangeRepository
	Profiles   ports.ProfileReader
	Graph      ports.TeardownStore
	Outbox     ports.NotificationOutbox
	Watermarks ports.WatermarkStore
	Publisher  ports.NotificationPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	BatchSize  int
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createUseCase := commands.CreateEventUseCase{
		Events:   deps.Events,
		Profiles: deps.Profiles,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	transitionUseCase := commands.TransitionUseCase{
		Events:     deps.Events,
		History:    deps.History,
		Profiles:   deps.Profiles,
		Graph:      deps.Graph,
		Outbox:     deps.Outbox,
		Watermarks: deps.Watermarks,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	eventsUseCase := queries.EventsUseCase{
		Events:  deps.Events,
		History: deps.History,
	}
	return Module{
		Handler: httpadapter.Handler{
			Create:     createUseCase,
			Transition: transitionUseCase,
			Queries:    eventsUseCase,
			Logger:     deps.Logger,
		},
		Relay: workers.NotificationRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.BatchSize,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(publisher ports.NotificationPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Events:     store,
		History:    store,
		Profiles:   store,
		Graph:      store,
		Outbox:     store,
		Watermarks: store,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
