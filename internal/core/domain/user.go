package domain

import (
	"fmt"
	"strings"
	"time"
)

// LifecycleState is the review state of a registrant's account.
type LifecycleState string

const (
	StatePending  LifecycleState = "pending"
	StateVerified LifecycleState = "verified"
	StateRejected LifecycleState = "rejected"
	StateBanned   LifecycleState = "banned"
)

// Valid reports whether s is one of the known lifecycle states.
func (s LifecycleState) Valid() bool {
	switch s {
	case StatePending, StateVerified, StateRejected, StateBanned:
		return true
	default:
		return false
	}
}

// ReviewAction is an administrator decision on a registrant.
type ReviewAction string

const (
	ActionAccept ReviewAction = "accept"
	ActionReject ReviewAction = "reject"
	ActionBan    ReviewAction = "ban"
)

// ParseReviewAction validates a raw action string coming from the admin UI.
func ParseReviewAction(s string) (ReviewAction, error) {
	switch a := ReviewAction(strings.TrimSpace(s)); a {
	case ActionAccept, ActionReject, ActionBan:
		return a, nil
	default:
		return "", fmt.Errorf("%w: invalid action %q", ErrValidation, s)
	}
}

// Target returns the state an action moves a record into.
func (a ReviewAction) Target() LifecycleState {
	switch a {
	case ActionAccept:
		return StateVerified
	case ActionReject:
		return StateRejected
	case ActionBan:
		return StateBanned
	default:
		return StatePending
	}
}

// UserRecord is one registrant. The JSON names are read by the admin UI as-is.
type UserRecord struct {
	ID                 string         `json:"id" bson:"id"`
	ExternalID         string         `json:"user_id" bson:"user_id"`
	FullName           string         `json:"name" bson:"name"`
	InstitutionalEmail string         `json:"email" bson:"email"`
	PersonalEmail      string         `json:"personal_email" bson:"personal_email"`
	IssuedPassword     string         `json:"password" bson:"password"`
	Role               string         `json:"role" bson:"role"`
	Section            string         `json:"section" bson:"section"`
	EvidenceLocation   string         `json:"raf_path" bson:"raf_path"`
	CreatedAt          time.Time      `json:"created_at" bson:"created_at"`
	VerifiedAt         *time.Time     `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	State              LifecycleState `json:"status" bson:"status"`
	Verified           bool           `json:"verified" bson:"verified"`
	Rejected           bool           `json:"rejected" bson:"rejected"`
	Banned             bool           `json:"banned" bson:"banned"`
}

// LookupKey is the identifier admin operations address a record by.
func (u *UserRecord) LookupKey() string {
	if u.ExternalID != "" {
		return u.ExternalID
	}
	return u.ID
}

// Apply moves the record into the action's target state. Exactly one flag is
// left set afterwards regardless of the previous state.
func (u *UserRecord) Apply(action ReviewAction, now time.Time) {
	u.State = action.Target()
	u.Verified = action == ActionAccept
	u.Rejected = action == ActionReject
	u.Banned = action == ActionBan
	if action == ActionAccept {
		ts := now.UTC()
		u.VerifiedAt = &ts
	}
}

// NormalizeState fills State from the review flags when it is missing or
// unknown, as in records written before the status field existed.
func (u *UserRecord) NormalizeState() {
	if u.State.Valid() {
		return
	}
	switch {
	case u.Banned:
		u.State = StateBanned
	case u.Rejected:
		u.State = StateRejected
	case u.Verified:
		u.State = StateVerified
	default:
		u.State = StatePending
	}
}

// FindByExternalID returns the index of the first record addressed by id.
func FindByExternalID(records []UserRecord, id string) (int, error) {
	for i := range records {
		if records[i].LookupKey() == id {
			return i, nil
		}
	}
	return -1, ErrUserNotFound
}

// RemoveByExternalID drops every record addressed by id and reports how many
// were removed.
func RemoveByExternalID(records []UserRecord, id string) ([]UserRecord, int) {
	kept := make([]UserRecord, 0, len(records))
	for _, r := range records {
		if r.LookupKey() == id {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}
