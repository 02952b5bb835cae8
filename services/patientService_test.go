package services

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/database"
	"SurgiFlow/repositories"
	"SurgiFlow/testutil"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientService(t *testing.T) *PatientService {
	db := testutil.OpenDB(t)
	return NewPatientService(
		database.NewTxRunner(db),
		repositories.NewPatientRepository(db),
		repositories.NewPatientFileRepository(db),
		"uploads",
	)
}

func TestPatientCreateAndGet(t *testing.T) {
	s := newPatientService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, PatientInput{FullName: "  Jane Doe ", Email: "jane@example.com", Age: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.FullName)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	_, err = s.GetByID(ctx, p.ID+1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.Create(ctx, PatientInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPatientUploadAndAssign(t *testing.T) {
	s := newPatientService(t)
	ctx := context.Background()

	path := s.UploadPath("../../etc/report.pdf")
	assert.Equal(t, "uploads", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_report.pdf"))
	assert.NotEqual(t, path, s.UploadPath("../../etc/report.pdf"))

	file, err := s.RecordUpload(ctx, "report.pdf", path)
	require.NoError(t, err)
	assert.Nil(t, file.PatientID)

	p, assigned, err := s.AssignFile(ctx, file.ID, PatientInput{FullName: "Jane Doe"})
	require.NoError(t, err)
	require.NotNil(t, assigned.PatientID)
	assert.Equal(t, p.ID, *assigned.PatientID)

	files, err := s.ListFiles(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.pdf", files[0].Filename)

	_, _, err = s.AssignFile(ctx, file.ID+10, PatientInput{FullName: "Nobody"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPatientCreateWithFile(t *testing.T) {
	s := newPatientService(t)
	ctx := context.Background()

	_, _, err := s.CreateWithFile(ctx, PatientInput{FullName: "Jane Doe"}, "a.pdf", "uploads/a.pdf")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	p, file, err := s.CreateWithFile(ctx, PatientInput{FullName: "Jane Doe", JointType: "HIP"}, "a.pdf", "uploads/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, p.ID, *file.PatientID)
}
