package entities

import (
	"sort"

	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
)

// TeardownSnapshot is a consistent read of everything the closing event
// touches. Counts are totals across the whole store so the planner can tell
// whether a record still has associations outside the event being removed.
type TeardownSnapshot struct {
	Event               Event
	Participations      []Participation
	Projects            []Project
	Profiles            map[string]RoleProfile
	ParticipationCounts map[string]int
	ProfileCounts       map[string]int
	AdminEventCount     int
	AdminCodes          []InvitationCode
	EventCodes          []InvitationCode
	CertificateConfigs  []CertificateConfig
	CategoryLinks       []CategoryLink
}

// TeardownPlan lists every record the cascade will remove. The plan is
// computed up front so the apply step can run as one unit of work.
type TeardownPlan struct {
	EventID              string
	ParticipationIDs     []string
	ProjectIDs           []string
	ProfileIDs           []string
	UserIDs              []string
	DeleteAdminProfile   bool
	AdminProfileID       string
	CodeIDs              []string
	CertificateConfigIDs []string
	CategoryLinks        []CategoryLink
}

// BuildTeardownPlan resolves the cascade for a closing event.
//
// Participations of the event always go. A role profile goes when it has no
// participations left anywhere else. The administrator profile goes only when
// this is its sole event and none of its invitation codes has remaining
// quota. A user goes when its last role profile goes.
func BuildTeardownPlan(snapshot TeardownSnapshot) (TeardownPlan, error) {
	plan := TeardownPlan{EventID: snapshot.Event.EventID}

	removedPerProfile := map[string]int{}
	for _, item := range snapshot.Participations {
		plan.ParticipationIDs = append(plan.ParticipationIDs, item.ParticipationID)
		removedPerProfile[item.ProfileID]++
	}
	for _, item := range snapshot.Projects {
		plan.ProjectIDs = append(plan.ProjectIDs, item.ProjectID)
	}

	removedPerUser := map[string]int{}
	for _, profileID := range sortedKeys(removedPerProfile) {
		profile, ok := snapshot.Profiles[profileID]
		if !ok {
			return TeardownPlan{}, domainerrors.ErrOrphanRoleReference
		}
		if profile.Kind == RoleKindAdministrator {
			continue
		}
		remaining := snapshot.ParticipationCounts[profileID] - removedPerProfile[profileID]
		if remaining > 0 {
			continue
		}
		plan.ProfileIDs = append(plan.ProfileIDs, profileID)
		removedPerUser[profile.UserID]++
	}

	codeIDs := map[string]struct{}{}
	adminID := snapshot.Event.AdminProfileID
	if adminID != "" {
		adminProfile, ok := snapshot.Profiles[adminID]
		if !ok {
			return TeardownPlan{}, domainerrors.ErrOrphanRoleReference
		}
		holdsQuota := false
		for _, code := range snapshot.AdminCodes {
			if code.Quota > 0 {
				holdsQuota = true
				break
			}
		}
		if snapshot.AdminEventCount <= 1 && !holdsQuota {
			plan.DeleteAdminProfile = true
			plan.AdminProfileID = adminID
			plan.ProfileIDs = append(plan.ProfileIDs, adminID)
			removedPerUser[adminProfile.UserID]++
			for _, code := range snapshot.AdminCodes {
				codeIDs[code.CodeID] = struct{}{}
			}
		}
	}

	for _, userID := range sortedKeys(removedPerUser) {
		if snapshot.ProfileCounts[userID]-removedPerUser[userID] <= 0 {
			plan.UserIDs = append(plan.UserIDs, userID)
		}
	}

	for _, code := range snapshot.EventCodes {
		codeIDs[code.CodeID] = struct{}{}
	}
	for _, id := range sortedKeys(codeIDs) {
		plan.CodeIDs = append(plan.CodeIDs, id)
	}
	for _, config := range snapshot.CertificateConfigs {
		plan.CertificateConfigIDs = append(plan.CertificateConfigIDs, config.ConfigID)
	}
	plan.CategoryLinks = append(plan.CategoryLinks, snapshot.CategoryLinks...)

	return plan, nil
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
