package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jirareport/models"
)

type fakeSource struct {
	issues []models.Issue
	err    error
	calls  int
}

func (f *fakeSource) FetchAssigned(_ context.Context, _ models.DateRange) ([]models.Issue, error) {
	f.calls++
	return f.issues, f.err
}

func TestReportService_Generate(t *testing.T) {
	t.Parallel()

	source := &fakeSource{issues: testIssues("PROJ-1", "PROJ-2", "PROJ-3")}
	blacklist := Blacklist{"PROJ-2": {}}
	svc := NewReportService(source, &CSVWriter{}, blacklist, DefaultWorkDay)

	rng := october2019(t, 9)
	path := filepath.Join(t.TempDir(), DefaultFileName(rng, "csv"))

	result, err := svc.Generate(context.Background(), rng, path, false)
	require.NoError(t, err)

	assert.Equal(t, path, result.Path)
	assert.Equal(t, 2, result.Issues)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 72*time.Hour, result.Allocation.Total())

	rows, err := ReadReport(path)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, "PROJ-2", row.IssueKey)
	}
}

func TestReportService_NoIssuesStillWritesReport(t *testing.T) {
	t.Parallel()

	svc := NewReportService(&fakeSource{}, &XLSXWriter{}, nil, DefaultWorkDay)
	rng := october2019(t, 0)
	path := filepath.Join(t.TempDir(), DefaultFileName(rng, "xlsx"))

	result, err := svc.Generate(context.Background(), rng, path, false)
	require.NoError(t, err)
	assert.Zero(t, result.Issues)
	assert.True(t, result.Allocation.Empty())

	rows, err := ReadReport(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReportService_PropagatesSourceErrors(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: fmt.Errorf("%w: status=401", models.ErrAuth)}
	svc := NewReportService(source, &CSVWriter{}, nil, DefaultWorkDay)
	path := filepath.Join(t.TempDir(), "report.csv")

	_, err := svc.Generate(context.Background(), october2019(t, 0), path, false)
	require.ErrorIs(t, err, models.ErrAuth)
	assert.NoFileExists(t, path)
	assert.Equal(t, 1, source.calls)
}
