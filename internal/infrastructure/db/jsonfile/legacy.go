package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stiarchives/portal/internal/core/domain"
)

// Layouts accepted for created_at and verified_at. Files written by the older
// Python service carry datetime.isoformat() values with no zone, read as local time.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

type storedTime struct {
	time.Time
}

func (t *storedTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = ts
		return nil
	}
	for _, layout := range zonelessLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = ts
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// storedRecord decodes one element of the file. Its timestamp fields shadow
// the embedded record's so both timestamp formats load.
type storedRecord struct {
	domain.UserRecord
	CreatedAt  storedTime  `json:"created_at"`
	VerifiedAt *storedTime `json:"verified_at,omitempty"`
}

func (s storedRecord) record() domain.UserRecord {
	u := s.UserRecord
	u.CreatedAt = s.CreatedAt.Time
	u.VerifiedAt = nil
	if s.VerifiedAt != nil && !s.VerifiedAt.IsZero() {
		ts := s.VerifiedAt.Time
		u.VerifiedAt = &ts
	}
	u.NormalizeState()
	return u
}

func decodeRecords(data []byte) ([]domain.UserRecord, error) {
	var stored []storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	records := make([]domain.UserRecord, 0, len(stored))
	for _, s := range stored {
		records = append(records, s.record())
	}
	return records, nil
}
