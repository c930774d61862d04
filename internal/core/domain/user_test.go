package domain

import (
	"errors"
	"testing"
	"time"
)

func flagsSet(u UserRecord) int {
	n := 0
	for _, f := range []bool{u.Verified, u.Rejected, u.Banned} {
		if f {
			n++
		}
	}
	return n
}

func TestUserRecord_Apply_ExactlyOneFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	actions := []ReviewAction{ActionAccept, ActionReject, ActionBan}

	for _, first := range actions {
		for _, second := range actions {
			u := UserRecord{State: StatePending}
			u.Apply(first, now)
			u.Apply(second, now)

			if flagsSet(u) != 1 {
				t.Fatalf("%s then %s: expected exactly one flag, got %+v", first, second, u)
			}
			if u.State != second.Target() {
				t.Fatalf("%s then %s: expected state %s, got %s", first, second, second.Target(), u.State)
			}
		}
	}
}

func TestUserRecord_Apply_AcceptStampsVerifiedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u := UserRecord{State: StatePending}

	u.Apply(ActionReject, now)
	if u.VerifiedAt != nil {
		t.Fatalf("reject must not stamp verified_at")
	}

	u.Apply(ActionAccept, now)
	if u.VerifiedAt == nil || !u.VerifiedAt.Equal(now) {
		t.Fatalf("expected verified_at %v, got %v", now, u.VerifiedAt)
	}
}

func TestParseReviewAction(t *testing.T) {
	if a, err := ParseReviewAction("accept"); err != nil || a != ActionAccept {
		t.Fatalf("expected accept, got %q %v", a, err)
	}
	if _, err := ParseReviewAction("promote"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFindByExternalID(t *testing.T) {
	records := []UserRecord{
		{ID: "a", ExternalID: "02000111"},
		{ID: "b", ExternalID: ""},
		{ID: "c", ExternalID: "02000111"},
	}

	idx, err := FindByExternalID(records, "02000111")
	if err != nil || idx != 0 {
		t.Fatalf("expected first match at 0, got %d %v", idx, err)
	}

	idx, err = FindByExternalID(records, "b")
	if err != nil || idx != 1 {
		t.Fatalf("expected id fallback at 1, got %d %v", idx, err)
	}

	if _, err := FindByExternalID(records, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRemoveByExternalID(t *testing.T) {
	records := []UserRecord{
		{ID: "a", ExternalID: "x"},
		{ID: "b", ExternalID: "y"},
		{ID: "c", ExternalID: "x"},
	}

	kept, removed := RemoveByExternalID(records, "x")
	if removed != 2 || len(kept) != 1 || kept[0].ID != "b" {
		t.Fatalf("unexpected result: removed=%d kept=%+v", removed, kept)
	}

	kept, removed = RemoveByExternalID(kept, "x")
	if removed != 0 || len(kept) != 1 {
		t.Fatalf("second removal should be a no-op, got removed=%d kept=%+v", removed, kept)
	}
}

func TestUserRecord_NormalizeState(t *testing.T) {
	cases := []struct {
		name string
		in   UserRecord
		want LifecycleState
	}{
		{"no flags", UserRecord{}, StatePending},
		{"verified", UserRecord{Verified: true}, StateVerified},
		{"rejected", UserRecord{Rejected: true}, StateRejected},
		{"banned wins", UserRecord{Verified: true, Banned: true}, StateBanned},
		{"unknown status", UserRecord{State: "2024-06-10T10:00:00Z", Rejected: true}, StateRejected},
		{"known status kept", UserRecord{State: StateVerified}, StateVerified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.in
			u.NormalizeState()
			if u.State != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, u.State)
			}
		})
	}
}
