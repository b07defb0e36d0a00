package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"volunteerhub/internal/database"
	"volunteerhub/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newFile(user int64, name string) *domain.UploadedFile {
	return &domain.UploadedFile{
		FileName:    name,
		ContentType: "application/pdf",
		FileSize:    1024,
		UploadedBy:  user,
		Status:      domain.StatusProcessing,
	}
}

func TestCreateBatchAssignsIDs(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))

	files := []*domain.UploadedFile{newFile(1, "a.pdf"), newFile(1, "b.png")}
	require.NoError(t, repo.CreateBatch(context.Background(), files))

	for _, f := range files {
		require.NotZero(t, f.ID)
		require.Equal(t, domain.StatusProcessing, f.Status)
		require.False(t, f.CreatedAt.IsZero())
	}
}

func TestListScopingAndOrder(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))

	older := newFile(1, "old.pdf")
	require.NoError(t, repo.CreateBatch(context.Background(), []*domain.UploadedFile{older}))

	newer := newFile(2, "new.pdf")
	newer.CreatedAt = time.Now().Add(time.Minute)
	require.NoError(t, repo.CreateBatch(context.Background(), []*domain.UploadedFile{newer}))

	all, err := repo.List(context.Background(), nil, 50)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "new.pdf", all[0].FileName) // newest first

	one := int64(1)
	mine, err := repo.List(context.Background(), &one, 50)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "old.pdf", mine[0].FileName)

	limited, err := repo.List(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestTerminalTransitionsAreFinal(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))

	f := newFile(1, "form.pdf")
	require.NoError(t, repo.CreateBatch(context.Background(), []*domain.UploadedFile{f}))

	require.NoError(t, repo.MarkCompleted(context.Background(), f.ID, []byte(`{"kind":"activity"}`)))

	got, err := repo.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	require.NotNil(t, got.RawPayload)

	// a second transition matches zero rows and changes nothing
	require.ErrorIs(t, repo.MarkError(context.Background(), f.ID, "late failure"), ErrAlreadyResolved)
	require.ErrorIs(t, repo.MarkNoData(context.Background(), f.ID, "nothing"), ErrAlreadyResolved)

	got, err = repo.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, got.Status)
	require.Nil(t, got.ErrorMessage)
}

func TestMarkNoDataAndError(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))

	a := newFile(1, "a.pdf")
	b := newFile(1, "b.pdf")
	require.NoError(t, repo.CreateBatch(context.Background(), []*domain.UploadedFile{a, b}))

	require.NoError(t, repo.MarkNoData(context.Background(), a.ID, "no structured data"))
	require.NoError(t, repo.MarkError(context.Background(), b.ID, "service unreachable"))

	gotA, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusNoDataFound, gotA.Status)
	require.Equal(t, "no structured data", *gotA.ErrorMessage)

	gotB, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusError, gotB.Status)
	require.Equal(t, "service unreachable", *gotB.ErrorMessage)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))
	_, err := repo.GetByID(context.Background(), 12345)
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestRecordAttempt(t *testing.T) {
	repo := NewUploadedFileRepository(setupDB(t))

	f := newFile(1, "form.pdf")
	require.NoError(t, repo.CreateBatch(context.Background(), []*domain.UploadedFile{f}))

	require.NoError(t, repo.RecordAttempt(context.Background(), f.ID))
	require.NoError(t, repo.RecordAttempt(context.Background(), f.ID))

	got, err := repo.GetByID(context.Background(), f.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Attempts)
}
