package httpadapter

import (
	"context"
	"log/slog"

	"symposium/contexts/event-core/lifecycle-service/application/commands"
	"symposium/contexts/event-core/lifecycle-service/application/queries"
	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	httptransport "symposium/contexts/event-core/lifecycle-service/transport/http"
)

type Handler struct {
	Create     commands.CreateEventUseCase
	Transition commands.TransitionUseCase
	Queries    queries.EventsUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateEventHandler(ctx context.Context, req httptransport.CreateEventRequest) (httptransport.EventResponse, error) {
	event, err := h.Create.CreateEvent(ctx, commands.CreateEventCommand{
		Name:           req.Name,
		Description:    req.Description,
		Capacity:       req.Capacity,
		AdminProfileID: req.AdminProfileID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return toEventResponse(event), nil
}

func (h Handler) ChangeStateHandler(ctx context.Context, eventID string, req httptransport.ChangeStateRequest) (httptransport.ChangeStateResponse, error) {
	result, err := h.Transition.ChangeState(ctx, commands.ChangeStateCommand{
		EventID: eventID,
		Target:  entities.EventState(req.Target),
		ActorID: req.ActorID,
		Reason:  req.Reason,
	})
	if err != nil {
		return httptransport.ChangeStateResponse{}, err
	}
	return httptransport.ChangeStateResponse{
		Event:    toEventResponse(result.Event),
		Notified: result.Notified,
		TornDown: result.TornDown,
	}, nil
}

func (h Handler) GetEventHandler(ctx context.Context, eventID string) (httptransport.EventResponse, error) {
	event, err := h.Queries.GetEvent(ctx, eventID)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return toEventResponse(event), nil
}

func (h Handler) ListEventsHandler(ctx context.Context, stateFilter string) (httptransport.EventListResponse, error) {
	events, err := h.Queries.ListEvents(ctx, stateFilter)
	if err != nil {
		return httptransport.EventListResponse{}, err
	}
	items := make([]httptransport.EventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, toEventResponse(event))
	}
	return httptransport.EventListResponse{Items: items}, nil
}

func (h Handler) StateHistoryHandler(ctx context.Context, eventID string) (httptransport.StateHistoryResponse, error) {
	changes, err := h.Queries.StateHistory(ctx, eventID)
	if err != nil {
		return httptransport.StateHistoryResponse{}, err
	}
	items := make([]httptransport.StateChangeResponse, 0, len(changes))
	for _, change := range changes {
		items = append(items, httptransport.StateChangeResponse{
			ChangeID:  change.ChangeID,
			EventID:   change.EventID,
			FromState: string(change.FromState),
			ToState:   string(change.ToState),
			ChangedBy: change.ChangedBy,
			Reason:    change.Reason,
			CreatedAt: change.CreatedAt,
		})
	}
	return httptransport.StateHistoryResponse{Items: items}, nil
}

func toEventResponse(event entities.Event) httptransport.EventResponse {
	return httptransport.EventResponse{
		EventID:        event.EventID,
		Name:           event.Name,
		Description:    event.Description,
		State:          string(event.State),
		Capacity:       event.Capacity,
		AdminProfileID: event.AdminProfileID,
		StartsAt:       event.StartsAt,
		EndsAt:         event.EndsAt,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}
