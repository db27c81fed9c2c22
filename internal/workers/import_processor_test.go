// internal/workers/import_processor_test.go
package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/workers"
	"github.com/ammerola/stockledger/test/helpers"
	"github.com/ammerola/stockledger/test/mocks"
)

const importCSV = "Product Name,Quantity,Product Type\nWidget,3,STANDARD\nGadget,1,STANDARD\n"

func TestImportProcessor_ProcessImport(t *testing.T) {
	jobID := uuid.New()
	queued := &domain.ImportJob{ID: jobID, Status: domain.JobQueued, FileKey: "imports/a.csv"}

	tests := []struct {
		name       string
		format     string
		setupMocks func(*mocks.MockImportService, *mocks.MockFileStore)
		wantErr    bool
		wantSkip   bool
	}{
		{
			name:   "successfully_runs_csv",
			format: "csv",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(queued, nil)
				files.EXPECT().Download(gomock.Any(), "imports/a.csv").Return([]byte(importCSV), nil)
				imports.EXPECT().RunJob(gomock.Any(), jobID, gomock.Len(2)).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, rows []domain.RawImportRow) (*domain.ImportReport, error) {
						assert.Equal(t, "Widget", rows[0].Values[domain.ColumnProductName])
						return &domain.ImportReport{Total: 2, Succeeded: 2}, nil
					})
			},
		},
		{
			name:   "skips_finished_job",
			format: "csv",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				done := *queued
				done.Status = domain.JobCompleted
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(&done, nil)
			},
		},
		{
			name:   "unknown_job_is_not_retried",
			format: "csv",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(nil, domain.NewNotFoundError("import job", jobID.String()))
			},
			wantErr:  true,
			wantSkip: true,
		},
		{
			name:   "unreadable_file_fails_job",
			format: "docx",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(queued, nil)
				files.EXPECT().Download(gomock.Any(), "imports/a.csv").Return([]byte("PK"), nil)
				imports.EXPECT().FailJob(gomock.Any(), jobID, gomock.Any()).Return(nil)
			},
			wantErr:  true,
			wantSkip: true,
		},
		{
			name:   "download_error_is_retried",
			format: "csv",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(queued, nil)
				files.EXPECT().Download(gomock.Any(), "imports/a.csv").Return(nil, errors.New("connection reset"))
			},
			wantErr: true,
		},
		{
			name:   "run_error_is_retried",
			format: "csv",
			setupMocks: func(imports *mocks.MockImportService, files *mocks.MockFileStore) {
				imports.EXPECT().GetJob(gomock.Any(), jobID).Return(queued, nil)
				files.EXPECT().Download(gomock.Any(), "imports/a.csv").Return([]byte(importCSV), nil)
				imports.EXPECT().RunJob(gomock.Any(), jobID, gomock.Any()).Return(nil, errors.New("database unavailable"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			imports := mocks.NewMockImportService(ctrl)
			files := mocks.NewMockFileStore(ctrl)
			tt.setupMocks(imports, files)

			processor := workers.NewImportProcessor(imports, files, 100, helpers.TestLogger())
			task, err := workers.NewImportTask(jobID, tt.format)
			require.NoError(t, err)

			err = processor.ProcessImport(context.Background(), task)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantSkip, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestImportProcessor_BadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := workers.NewImportProcessor(mocks.NewMockImportService(ctrl), mocks.NewMockFileStore(ctrl), 100, helpers.TestLogger())

	err := processor.ProcessImport(context.Background(), asynq.NewTask(workers.TypeImportProcess, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
