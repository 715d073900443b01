package domain

import "strings"

// Status represents the publication state of a page.
type Status string

const (
	// StatusDraft is the initial state of every page.
	StatusDraft Status = "draft"
	// StatusPublished marks a page visible to the public site.
	StatusPublished Status = "published"
	// StatusArchived marks a page retired from the public site.
	StatusArchived Status = "archived"
)

// ParseStatus normalizes input into a known Status. Empty input maps to
// StatusDraft; unknown values report false.
func ParseStatus(input string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(input))) {
	case "", StatusDraft:
		return StatusDraft, true
	case StatusPublished:
		return StatusPublished, true
	case StatusArchived:
		return StatusArchived, true
	default:
		return "", false
	}
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Transition names a state machine edge.
type Transition string

const (
	TransitionPublish   Transition = "publish"
	TransitionUnpublish Transition = "unpublish"
	TransitionArchive   Transition = "archive"
)

// Next returns the state reached from s through t. changed is false when the
// transition is a no-op (publishing a published page, unpublishing a draft).
// ok is false when the edge does not exist.
//
//	publish:   draft|archived -> published
//	unpublish: published -> draft
//	archive:   published -> archived (unpublish with archive)
func (s Status) Next(t Transition) (next Status, changed bool, ok bool) {
	switch t {
	case TransitionPublish:
		switch s {
		case StatusDraft, StatusArchived:
			return StatusPublished, true, true
		case StatusPublished:
			return StatusPublished, false, true
		}
	case TransitionUnpublish:
		switch s {
		case StatusPublished:
			return StatusDraft, true, true
		case StatusDraft:
			return StatusDraft, false, true
		}
	case TransitionArchive:
		switch s {
		case StatusPublished:
			return StatusArchived, true, true
		case StatusDraft:
			return StatusDraft, false, true
		}
	}
	return s, false, false
}
