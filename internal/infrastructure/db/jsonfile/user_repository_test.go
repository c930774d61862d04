package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stiarchives/portal/internal/core/domain"
)

func TestUserRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.json")
	repo := NewUserRepository(path)

	created := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	verified := created.Add(time.Hour)
	want := []domain.UserRecord{
		{
			ID:                 "01J0000000000000000000000A",
			ExternalID:         "02000123456",
			FullName:           "Maria Santos",
			InstitutionalEmail: "santos@clmb.sti.archives",
			PersonalEmail:      "maria@gmail.com",
			IssuedPassword:     "aB3$eF6&hI9!",
			Role:               "student",
			Section:            "BSIT-3A",
			EvidenceLocation:   "uploads/02000123456_1700000000000_raf.pdf",
			CreatedAt:          created,
			State:              domain.StatePending,
		},
		{
			ID:         "01J0000000000000000000000B",
			ExternalID: "02000999999",
			FullName:   "Jose Rizal",
			CreatedAt:  created,
			VerifiedAt: &verified,
			State:      domain.StateVerified,
			Verified:   true,
		},
	}

	require.NoError(t, repo.SaveAll(context.Background(), want))

	got, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestUserRepository_PendingOmitsVerifiedAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)

	require.NoError(t, repo.SaveAll(context.Background(), []domain.UserRecord{{ID: "x", State: domain.StatePending}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "verified_at")
	require.Contains(t, string(data), `"status": "pending"`)
}

func TestUserRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewUserRepository(path).LoadAll(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrStorage))
}

func TestUserRepository_Ping(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "data", "users.json"))
	require.NoError(t, repo.Ping(context.Background()))
}

func TestUserRepository_LoadsPythonWrittenRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `[
  {
    "id": "1718013600.123456",
    "user_id": "02000123456",
    "name": "Maria Santos",
    "email": "santos@clmb.sti.archives",
    "personal_email": "maria@gmail.com",
    "password": "aB3$eF6&hI9!",
    "role": "student",
    "section": "BSIT-3A",
    "created_at": "2024-06-10T10:00:00.123456",
    "verified": false,
    "rejected": false,
    "banned": false,
    "raf_path": "uploads/02000123456_raf.pdf"
  },
  {
    "id": "1718013700.5",
    "user_id": "02000654321",
    "name": "Jose Rizal",
    "created_at": "2024-06-10T10:01:40",
    "verified_at": "2024-06-11T09:30:00.000001",
    "verified": true,
    "rejected": false,
    "banned": false,
    "raf_path": "https://drive.google.com/file/d/abc/view?usp=sharing"
  },
  {
    "id": "1718013800000",
    "user_id": "02000111111",
    "name": "Andres Bonifacio",
    "created_at": "2024-06-10T10:03:20.000Z",
    "status": "Invalid Date",
    "verified": false,
    "rejected": false,
    "banned": true,
    "raf_path": "uploads/x.pdf"
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	records, err := NewUserRepository(path).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	const wall = "2006-01-02T15:04:05.000000"
	require.Equal(t, "2024-06-10T10:00:00.123456", records[0].CreatedAt.Format(wall))
	require.Nil(t, records[0].VerifiedAt)
	require.Equal(t, domain.StatePending, records[0].State)
	require.Equal(t, "Maria Santos", records[0].FullName)

	require.NotNil(t, records[1].VerifiedAt)
	require.Equal(t, "2024-06-11T09:30:00.000001", records[1].VerifiedAt.Format(wall))
	require.Equal(t, domain.StateVerified, records[1].State)

	require.True(t, records[2].CreatedAt.Equal(time.Date(2024, 6, 10, 10, 3, 20, 0, time.UTC)))
	require.Equal(t, domain.StateBanned, records[2].State)
}

func TestUserRepository_LegacyRecordSurvivesRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `[{"id":"1","user_id":"02000123456","name":"Maria Santos","created_at":"2024-06-10T10:00:00.123456","verified":false,"rejected":false,"banned":false}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	repo := NewUserRepository(path)

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(context.Background(), records))

	again, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.True(t, again[0].CreatedAt.Equal(records[0].CreatedAt))
	require.Equal(t, domain.StatePending, again[0].State)
}

func TestUserRepository_RejectsUnknownTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","created_at":"yesterday"}]`), 0o644))

	_, err := NewUserRepository(path).LoadAll(context.Background())
	require.ErrorIs(t, err, domain.ErrStorage)
}
