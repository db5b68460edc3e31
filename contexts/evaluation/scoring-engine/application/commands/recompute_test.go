package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"symposium/contexts/evaluation/scoring-engine/adapters/memory"
	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

func newRecomputeUseCase(store *memory.Store) RecomputeUseCase {
	return RecomputeUseCase{
		Ratings:        store,
		Criteria:       store,
		Participations: store,
		Scores:         store,
	}
}

func seedRating(t *testing.T, store *memory.Store, evaluatorID, participantID, criterionID string, value int) {
	t.Helper()
	uc := newRatingUseCase(store)
	if _, err := uc.RecordRating(context.Background(), RecordRatingCommand{
		EvaluatorID:   evaluatorID,
		ParticipantID: participantID,
		CriterionID:   criterionID,
		Value:         value,
	}); err != nil {
		t.Fatalf("seed rating (%s, %s, %s) failed: %v", evaluatorID, participantID, criterionID, err)
	}
}

// Two evaluators over criteria weighted 40/35/25:
// ((4*40+5*35+3*25) + (5*40+4*35+4*25)) / (100*2) = 930/200 = 4.65.
func TestRecomputeWeightedAverageAcrossEvaluators(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 40})
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-b", EventID: "event-1", Weight: 35})
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-c", EventID: "event-1", Weight: 25})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})

	seedRating(t, store, "eval-1", "part-1", "crit-a", 4)
	seedRating(t, store, "eval-1", "part-1", "crit-b", 5)
	seedRating(t, store, "eval-1", "part-1", "crit-c", 3)
	seedRating(t, store, "eval-2", "part-1", "crit-a", 5)
	seedRating(t, store, "eval-2", "part-1", "crit-b", 4)
	seedRating(t, store, "eval-2", "part-1", "crit-c", 4)

	result, err := newRecomputeUseCase(store).RecomputeScore(context.Background(), RecomputeScoreCommand{
		ParticipantID: "part-1",
		EventID:       "event-1",
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if result.Score != 4.65 {
		t.Fatalf("expected score 4.65, got %v", result.Score)
	}
	if result.EvaluatorCount != 2 {
		t.Fatalf("expected 2 distinct evaluators, got %d", result.EvaluatorCount)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 60})
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-b", EventID: "event-1", Weight: 30})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})
	seedRating(t, store, "eval-1", "part-1", "crit-a", 3)
	seedRating(t, store, "eval-1", "part-1", "crit-b", 5)

	uc := newRecomputeUseCase(store)
	first, err := uc.RecomputeScore(context.Background(), RecomputeScoreCommand{ParticipantID: "part-1", EventID: "event-1"})
	if err != nil {
		t.Fatalf("first recompute failed: %v", err)
	}
	second, err := uc.RecomputeScore(context.Background(), RecomputeScoreCommand{ParticipantID: "part-1", EventID: "event-1"})
	if err != nil {
		t.Fatalf("second recompute failed: %v", err)
	}
	if first.Score != second.Score {
		t.Fatalf("expected identical scores, got %v then %v", first.Score, second.Score)
	}

	participation, err := store.GetParticipation(context.Background(), "part-1", "event-1")
	if err != nil {
		t.Fatalf("get participation failed: %v", err)
	}
	if participation.ComputedScore == nil || *participation.ComputedScore != second.Score {
		t.Fatalf("expected stored score %v, got %v", second.Score, participation.ComputedScore)
	}
}

func TestRecomputeScoreIsZeroWithoutRatings(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 100})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})

	result, err := newRecomputeUseCase(store).RecomputeScore(context.Background(), RecomputeScoreCommand{
		ParticipantID: "part-1",
		EventID:       "event-1",
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("expected zero score, got %v", result.Score)
	}
}

func TestRecomputePropagatesToGroupAndProjects(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 50})
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-b", EventID: "event-1", Weight: 50})
	for _, participantID := range []string{"part-1", "part-2", "part-3"} {
		store.SetParticipation(ports.ParticipationProjection{
			ParticipantID: participantID,
			EventID:       "event-1",
			GroupCode:     "team-alpha",
		})
	}
	submitted := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
	store.SetProject(ports.ProjectProjection{
		ProjectID:            "project-1",
		EventID:              "event-1",
		CreatorParticipantID: "part-1",
		Title:                "Prototype",
		SubmittedAt:          submitted,
	})

	// Only part-2 holds ratings; it is not the lowest participant id, so the
	// reference search must skip unrated members.
	seedRating(t, store, "eval-1", "part-2", "crit-a", 4)
	seedRating(t, store, "eval-1", "part-2", "crit-b", 5)

	result, err := newRecomputeUseCase(store).RecomputeScore(context.Background(), RecomputeScoreCommand{
		ParticipantID: "part-3",
		EventID:       "event-1",
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if result.ReferenceParticipant != "part-2" {
		t.Fatalf("expected part-2 as reference, got %s", result.ReferenceParticipant)
	}
	if result.Score != 4.5 {
		t.Fatalf("expected score 4.5, got %v", result.Score)
	}

	for _, participantID := range []string{"part-1", "part-2", "part-3"} {
		participation, err := store.GetParticipation(context.Background(), participantID, "event-1")
		if err != nil {
			t.Fatalf("get participation %s failed: %v", participantID, err)
		}
		if participation.ComputedScore == nil || *participation.ComputedScore != result.Score {
			t.Fatalf("expected %s to carry group score %v, got %v", participantID, result.Score, participation.ComputedScore)
		}
	}

	project, ok := store.GetProject("project-1")
	if !ok {
		t.Fatalf("project missing")
	}
	if project.ComputedScore == nil || *project.ComputedScore != result.Score {
		t.Fatalf("expected project score %v, got %v", result.Score, project.ComputedScore)
	}
}

func TestRecomputePropagatesToAllProjectsOfIndividual(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 100})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})
	for i, projectID := range []string{"project-1", "project-2"} {
		store.SetProject(ports.ProjectProjection{
			ProjectID:            projectID,
			EventID:              "event-1",
			CreatorParticipantID: "part-1",
			SubmittedAt:          time.Date(2026, time.April, 1, 10+i, 0, 0, 0, time.UTC),
		})
	}
	seedRating(t, store, "eval-1", "part-1", "crit-a", 5)

	result, err := newRecomputeUseCase(store).RecomputeScore(context.Background(), RecomputeScoreCommand{
		ParticipantID: "part-1",
		EventID:       "event-1",
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if len(result.UpdatedProjects) != 2 {
		t.Fatalf("expected both projects updated, got %v", result.UpdatedProjects)
	}
	for _, projectID := range result.UpdatedProjects {
		project, ok := store.GetProject(projectID)
		if !ok || project.ComputedScore == nil || *project.ComputedScore != 5 {
			t.Fatalf("expected project %s to carry score 5", projectID)
		}
	}
}

// Removing a criterion leaves stored scores alone until a recompute is
// requested; the recompute then excludes the orphaned ratings.
func TestOrphanedRatingsExcludedOnlyOnExplicitRecompute(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 50})
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-b", EventID: "event-1", Weight: 50})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})
	seedRating(t, store, "eval-1", "part-1", "crit-a", 2)
	seedRating(t, store, "eval-1", "part-1", "crit-b", 5)

	uc := newRecomputeUseCase(store)
	before, err := uc.RecomputeScore(context.Background(), RecomputeScoreCommand{ParticipantID: "part-1", EventID: "event-1"})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if before.Score != 3.5 {
		t.Fatalf("expected score 3.5 before removal, got %v", before.Score)
	}

	store.RemoveCriterion("crit-a")

	// Stored value is untouched until the caller recomputes.
	participation, err := store.GetParticipation(context.Background(), "part-1", "event-1")
	if err != nil {
		t.Fatalf("get participation failed: %v", err)
	}
	if participation.ComputedScore == nil || *participation.ComputedScore != 3.5 {
		t.Fatalf("expected stored score to remain 3.5, got %v", participation.ComputedScore)
	}

	after, err := uc.RecomputeScore(context.Background(), RecomputeScoreCommand{ParticipantID: "part-1", EventID: "event-1"})
	if err != nil {
		t.Fatalf("recompute after removal failed: %v", err)
	}
	if after.Score != 5 {
		t.Fatalf("expected score 5 over the remaining criterion, got %v", after.Score)
	}
}

func TestGroupScoreWriteIsAllOrNothing(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1", GroupCode: "team-alpha"})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-2", EventID: "event-1", GroupCode: "team-alpha"})

	err := store.SetGroupScores(context.Background(), "event-1", 4.5, []string{"part-1", "part-2"}, []string{"project-missing"})
	if err == nil {
		t.Fatalf("expected group score write to fail on the missing project")
	}

	for _, participantID := range []string{"part-1", "part-2"} {
		participation, getErr := store.GetParticipation(context.Background(), participantID, "event-1")
		if getErr != nil {
			t.Fatalf("get participation %s failed: %v", participantID, getErr)
		}
		if participation.ComputedScore != nil {
			t.Fatalf("failed group write must not touch %s, got score %v", participantID, *participation.ComputedScore)
		}
	}
}

// Interleaved recomputes of the same group must never leave members with
// mixed scores: each write lands wholesale, so whichever recompute commits
// last sets every member.
func TestConcurrentGroupRecomputesKeepMembersEqual(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 100})
	for _, participantID := range []string{"part-1", "part-2", "part-3"} {
		store.SetParticipation(ports.ParticipationProjection{
			ParticipantID: participantID,
			EventID:       "event-1",
			GroupCode:     "team-alpha",
		})
	}
	seedRating(t, store, "eval-1", "part-1", "crit-a", 2)

	uc := newRecomputeUseCase(store)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(value int) {
			defer wg.Done()
			rating := newRatingUseCase(store)
			if _, err := rating.RecordRating(context.Background(), RecordRatingCommand{
				EvaluatorID:   "eval-1",
				ParticipantID: "part-1",
				CriterionID:   "crit-a",
				Value:         value,
			}); err != nil {
				t.Errorf("record rating failed: %v", err)
				return
			}
			if _, err := uc.RecomputeScore(context.Background(), RecomputeScoreCommand{
				ParticipantID: "part-2",
				EventID:       "event-1",
			}); err != nil {
				t.Errorf("recompute failed: %v", err)
			}
		}(i + 3)
	}
	wg.Wait()

	first, err := store.GetParticipation(context.Background(), "part-1", "event-1")
	if err != nil {
		t.Fatalf("get participation failed: %v", err)
	}
	if first.ComputedScore == nil {
		t.Fatalf("expected a computed score on part-1")
	}
	for _, participantID := range []string{"part-2", "part-3"} {
		participation, err := store.GetParticipation(context.Background(), participantID, "event-1")
		if err != nil {
			t.Fatalf("get participation %s failed: %v", participantID, err)
		}
		if participation.ComputedScore == nil || *participation.ComputedScore != *first.ComputedScore {
			t.Fatalf("group members diverged: part-1 has %v, %s has %v",
				*first.ComputedScore, participantID, participation.ComputedScore)
		}
	}
}

func TestRoundScoreFixedPrecision(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.654, 4.65},
		{4.655, 4.66},
		{4.649999, 4.65},
		{0, 0},
	}
	for _, tc := range cases {
		if got := entities.RoundScore(tc.in); got != tc.want {
			t.Fatalf("RoundScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
