// Package criteriaservice implements the evaluation criteria catalog inside
// the evaluation context.
//
// The module owns weighted criterion create/edit/remove and enforces the
// per-event 100% weight ceiling. Business rules live in application/domain
// layers; infrastructure concerns stay behind ports and adapters.
package criteriaservice
