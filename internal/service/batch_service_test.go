package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invosplit/internal/config"
	"invosplit/internal/domain"
	"invosplit/internal/extract"
	"invosplit/internal/normalize"
	"invosplit/internal/port"
	"invosplit/internal/schema"
	"invosplit/internal/service"
	"invosplit/internal/split"
	"invosplit/internal/validate"
	"invosplit/mocks"
)

type serviceFixture struct {
	repo         *mocks.MockBatchRepo
	storage      *mocks.MockObjectStorage
	layout       *mocks.MockLayoutAnalyzer
	materializer *mocks.MockSplitMaterializer
	inference    *mocks.MockInferenceClient
	svc          service.BatchService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:         new(mocks.MockBatchRepo),
		storage:      new(mocks.MockObjectStorage),
		layout:       new(mocks.MockLayoutAnalyzer),
		materializer: new(mocks.MockSplitMaterializer),
		inference:    new(mocks.MockInferenceClient),
	}
	detector := split.NewDetector(f.inference, split.DefaultPageByteBudget)
	orchestrator := extract.NewOrchestrator(f.layout, extract.NewDeterministicSource())
	f.svc = service.NewBatchService(
		f.repo, f.storage, f.layout, f.materializer,
		detector, orchestrator, normalize.DefaultGuardrail(), validate.DefaultEngine(),
		&config.S3Config{Bucket: "test-bucket", MaxFileSizeMB: 50, PresignExpiry: 3600},
	)
	return f
}

func uploadedBatch(id uuid.UUID) *domain.Batch {
	return &domain.Batch{
		ID:          id,
		S3Bucket:    "test-bucket",
		S3Key:       "batches/" + id.String() + "/bundle.pdf",
		ContentType: "application/pdf",
		State:       domain.BatchStateUploaded,
	}
}

func TestStartProcessing_ProposesSplit(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)

	layoutResult := &port.LayoutResult{
		Pages: []domain.PageRecord{
			{PageNumber: 1, Text: "Invoice A page 1"},
			{PageNumber: 2, Text: "Invoice A page 2"},
			{PageNumber: 3, Text: "Invoice B page 1"},
		},
	}

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateProcessingSplit).Return(nil)
	f.storage.On("Download", mock.Anything, "test-bucket", batch.S3Key).Return([]byte("%PDF bundle"), nil)
	f.layout.On("AnalyzeDocument", mock.Anything, []byte("%PDF bundle")).Return(layoutResult, nil)
	f.inference.On("ProposeBoundaries", mock.Anything, mock.Anything).Return(
		`[{"label":"Invoice A","start_page":1,"end_page":2,"confidence":0.9,"rationale":"new invoice number"},
		  {"label":"Invoice B","start_page":3,"end_page":3,"confidence":0.8,"rationale":"letterhead change"}]`, nil)
	f.repo.On("SaveCandidateSpans", mock.Anything, id, mock.Anything).Return(nil)
	f.repo.On("SaveValidatedSpans", mock.Anything, id, mock.Anything, mock.Anything, 3).Return(nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateSplitProposed).Return(nil)

	result, err := f.svc.StartProcessing(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStateSplitProposed, result.State)
	assert.Equal(t, 3, result.PageCount)

	var spans []domain.ValidatedSpan
	require.NoError(t, json.Unmarshal(result.ValidatedSpans, &spans))
	require.Len(t, spans, 2)
	assert.True(t, split.IsTiling(spans, 3))
	f.repo.AssertExpectations(t)
}

func TestStartProcessing_RejectsNonProcessableState(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)
	batch.State = domain.BatchStateExtractingData

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)

	_, err := f.svc.StartProcessing(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrBatchNotProcessable)
}

func TestStartProcessing_LayoutFailureIsRetryable(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateProcessingSplit).Return(nil)
	f.storage.On("Download", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
	f.layout.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("service unavailable"))
	f.repo.On("SetError", mock.Anything, id, domain.BatchStateProcessingFailed, mock.Anything).Return(nil)

	_, err := f.svc.StartProcessing(context.Background(), id)
	require.Error(t, err)
	f.repo.AssertCalled(t, "SetError", mock.Anything, id, domain.BatchStateProcessingFailed, mock.Anything)
}

func TestValidateSplit_RequiresProposedState(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)

	_, err := f.svc.ValidateSplit(context.Background(), id, nil)
	require.ErrorIs(t, err, domain.ErrSplitNotProposed)
}

func TestValidateSplit_ReconcilesEdits(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)
	batch.State = domain.BatchStateSplitProposed
	batch.PageCount = 5

	var saved json.RawMessage
	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("SaveValidatedSpans", mock.Anything, id, mock.Anything, mock.Anything, 5).
		Run(func(args mock.Arguments) {
			saved = args.Get(2).(json.RawMessage)
		}).Return(nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateSplitValidated).Return(nil)

	// Reviewer edit leaves pages 3-5 uncovered; reconciliation must absorb them.
	result, err := f.svc.ValidateSplit(context.Background(), id, []domain.CandidateSpan{
		{Label: "Invoice A", StartPage: 1, EndPage: 2, Confidence: 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStateSplitValidated, result.State)

	var spans []domain.ValidatedSpan
	require.NoError(t, json.Unmarshal(saved, &spans))
	assert.True(t, split.IsTiling(spans, 5))
}

func TestExtractData_RecordsPerSpan(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	spanA := domain.ValidatedSpan{ID: uuid.New(), Label: "Invoice A", StartPage: 1, EndPage: 2, Confidence: 0.9}
	spanB := domain.ValidatedSpan{ID: uuid.New(), Label: "Invoice B", StartPage: 3, EndPage: 3, Confidence: 0.8}

	batch := uploadedBatch(id)
	batch.State = domain.BatchStateSplitValidated
	spansJSON, err := json.Marshal([]domain.ValidatedSpan{spanA, spanB})
	require.NoError(t, err)
	batch.ValidatedSpans = spansJSON

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateExtractingData).Return(nil)
	f.storage.On("Download", mock.Anything, "test-bucket", batch.S3Key).Return([]byte("%PDF bundle"), nil)
	f.materializer.On("Split", mock.Anything, mock.Anything, mock.Anything).Return([]port.SplitResult{
		{SpanID: spanA.ID, Bytes: []byte("%PDF part A")},
		{SpanID: spanB.ID, Err: "page rendering failed"},
	}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.layout.On("AnalyzeDocument", mock.Anything, []byte("%PDF part A")).Return(&port.LayoutResult{
		Pages: []domain.PageRecord{{PageNumber: 1, Text: "Invoice INV-42"}},
		KeyValuePairs: []port.KeyValuePair{
			{Key: "Invoice Number", Value: "INV-42", PageNumber: 1, Confidence: 0.97},
		},
	}, nil)

	var savedRecords json.RawMessage
	f.repo.On("SaveRecords", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) {
			savedRecords = args.Get(2).(json.RawMessage)
		}).Return(nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateDataValidationPending).Return(nil)

	result, err := f.svc.ExtractData(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStateDataValidationPending, result.State)

	var records []schema.InvoiceRecord
	require.NoError(t, json.Unmarshal(savedRecords, &records))
	require.Len(t, records, 2)

	assert.Equal(t, "INV-42", records[0].InvoiceNumber)
	assert.Greater(t, records[0].Confidence, 0.0)

	// The failed span is carried as a record with zero confidence.
	assert.Equal(t, spanB.ID, records[1].SpanID)
	assert.Zero(t, records[1].Confidence)
	assert.Contains(t, records[1].Error, "page rendering failed")
}

func TestExtractData_MissingPartIsRecordedOnSpan(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	span := domain.ValidatedSpan{ID: uuid.New(), Label: "Invoice A", StartPage: 1, EndPage: 2}

	batch := uploadedBatch(id)
	batch.State = domain.BatchStateSplitValidated
	spansJSON, err := json.Marshal([]domain.ValidatedSpan{span})
	require.NoError(t, err)
	batch.ValidatedSpans = spansJSON

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateExtractingData).Return(nil)
	f.storage.On("Download", mock.Anything, "test-bucket", batch.S3Key).Return([]byte("%PDF bundle"), nil)
	// splitter reply omits the span entirely
	f.materializer.On("Split", mock.Anything, mock.Anything, mock.Anything).
		Return([]port.SplitResult{}, nil)

	var savedRecords json.RawMessage
	f.repo.On("SaveRecords", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) {
			savedRecords = args.Get(2).(json.RawMessage)
		}).Return(nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateDataValidationPending).Return(nil)

	_, err = f.svc.ExtractData(context.Background(), id)
	require.NoError(t, err)

	var records []schema.InvoiceRecord
	require.NoError(t, json.Unmarshal(savedRecords, &records))
	require.Len(t, records, 1)
	assert.Equal(t, span.ID, records[0].SpanID)
	assert.Zero(t, records[0].Confidence)
	assert.Equal(t, "split materialization returned no part for this span", records[0].Error)
}

func TestExtractData_MaterializationFailureFailsBatch(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	span := domain.ValidatedSpan{ID: uuid.New(), StartPage: 1, EndPage: 1}

	batch := uploadedBatch(id)
	batch.State = domain.BatchStateSplitValidated
	spansJSON, err := json.Marshal([]domain.ValidatedSpan{span})
	require.NoError(t, err)
	batch.ValidatedSpans = spansJSON

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)
	f.repo.On("UpdateState", mock.Anything, id, domain.BatchStateExtractingData).Return(nil)
	f.storage.On("Download", mock.Anything, mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
	f.materializer.On("Split", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("split service unreachable"))
	f.repo.On("SetError", mock.Anything, id, domain.BatchStateError, mock.Anything).Return(nil)

	_, err = f.svc.ExtractData(context.Background(), id)
	require.Error(t, err)
	f.repo.AssertCalled(t, "SetError", mock.Anything, id, domain.BatchStateError, mock.Anything)
}

func TestExtractData_RequiresValidatedState(t *testing.T) {
	f := newServiceFixture()
	id := uuid.New()
	batch := uploadedBatch(id)

	f.repo.On("GetByID", mock.Anything, id).Return(batch, nil)

	_, err := f.svc.ExtractData(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrSplitNotValidated)
}
