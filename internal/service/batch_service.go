package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"invosplit/internal/config"
	"invosplit/internal/domain"
	"invosplit/internal/extract"
	"invosplit/internal/normalize"
	"invosplit/internal/port"
	"invosplit/internal/schema"
	"invosplit/internal/split"
	"invosplit/internal/validate"
)

// UploadBatchInput is the DTO for bundle upload requests.
type UploadBatchInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// BatchService defines the bundle processing contract: upload, split
// detection, split validation, extraction, and retrieval.
type BatchService interface {
	Upload(ctx context.Context, input UploadBatchInput) (*domain.Batch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error)
	StartProcessing(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	ValidateSplit(ctx context.Context, id uuid.UUID, edits []domain.CandidateSpan) (*domain.Batch, error)
	ExtractData(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	GetRecords(ctx context.Context, id uuid.UUID) ([]schema.InvoiceRecord, error)
	GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type batchService struct {
	repo         port.BatchRepository
	storage      port.ObjectStorage
	layout       port.LayoutAnalyzer
	materializer port.SplitMaterializer
	detector     *split.Detector
	orchestrator *extract.Orchestrator
	guardrail    normalize.Guardrail
	checker      *validate.Engine
	s3cfg        *config.S3Config
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(
	repo port.BatchRepository,
	storage port.ObjectStorage,
	layout port.LayoutAnalyzer,
	materializer port.SplitMaterializer,
	detector *split.Detector,
	orchestrator *extract.Orchestrator,
	guardrail normalize.Guardrail,
	checker *validate.Engine,
	s3cfg *config.S3Config,
) BatchService {
	return &batchService{
		repo:         repo,
		storage:      storage,
		layout:       layout,
		materializer: materializer,
		detector:     detector,
		orchestrator: orchestrator,
		guardrail:    guardrail,
		checker:      checker,
		s3cfg:        s3cfg,
	}
}

func (s *batchService) Upload(ctx context.Context, input UploadBatchInput) (*domain.Batch, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.s3cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte check; the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, valid := domain.AllowedContentTypes[detectedType]; !valid {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	batchID := uuid.New()
	s3Key := fmt.Sprintf("batches/%s/%s", batchID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	batch := &domain.Batch{
		ID:           batchID,
		FileName:     batchID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		ContentType:  contentType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.s3cfg.Bucket,
		S3Key:        s3Key,
		State:        domain.BatchStateUploaded,
	}

	log.Printf("batchService.Upload: uploading bundle %s (%s, %d bytes)",
		input.Header.Filename, contentType, input.Header.Size)

	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      batch.S3Bucket,
		Key:         batch.S3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		log.Printf("batchService.Upload: S3 upload failed for batch %s: %v", batch.ID, err)
		_ = s.repo.SetError(ctx, batch.ID, domain.BatchStateError, fmt.Sprintf("upload failed: %v", err))
		return nil, domain.ErrUploadFailed
	}

	return batch, nil
}

func (s *batchService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *batchService) List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// StartProcessing runs split detection for a batch: layout analysis over
// the full bundle, one boundary proposal call, and reconciliation into a
// gap-free span set persisted on the batch row.
func (s *batchService) StartProcessing(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !batch.CanStartProcessing() {
		return nil, fmt.Errorf("%w: state %s", domain.ErrBatchNotProcessable, batch.State)
	}

	if err := s.transition(ctx, batch, domain.BatchStateProcessingSplit); err != nil {
		return nil, err
	}

	source, err := s.storage.Download(ctx, batch.S3Bucket, batch.S3Key)
	if err != nil {
		return nil, s.failSplit(ctx, batch, fmt.Errorf("downloading bundle: %w", err))
	}

	layoutResult, err := s.layout.AnalyzeDocument(ctx, source)
	if err != nil {
		return nil, s.failSplit(ctx, batch, fmt.Errorf("layout analysis: %w", err))
	}

	detection, err := s.detector.Detect(ctx, layoutResult.Pages)
	if err != nil {
		return nil, s.failSplit(ctx, batch, fmt.Errorf("boundary detection: %w", err))
	}

	candidatesJSON, err := json.Marshal(detection.Candidates)
	if err != nil {
		return nil, s.failSplit(ctx, batch, fmt.Errorf("marshaling candidate spans: %w", err))
	}
	if err := s.repo.SaveCandidateSpans(ctx, batch.ID, candidatesJSON); err != nil {
		return nil, err
	}

	spansJSON, err := json.Marshal(detection.Spans)
	if err != nil {
		return nil, s.failSplit(ctx, batch, fmt.Errorf("marshaling validated spans: %w", err))
	}
	if err := s.repo.SaveValidatedSpans(ctx, batch.ID, spansJSON, detection.Confidence, len(layoutResult.Pages)); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, batch, domain.BatchStateSplitProposed); err != nil {
		return nil, err
	}

	log.Printf("batchService.StartProcessing: batch %s proposed %d spans over %d pages (confidence %.2f)",
		batch.ID, len(detection.Spans), len(layoutResult.Pages), detection.Confidence)

	batch.CandidateSpans = candidatesJSON
	batch.ValidatedSpans = spansJSON
	batch.SplitConfidence = detection.Confidence
	batch.PageCount = len(layoutResult.Pages)
	return batch, nil
}

// ValidateSplit confirms the proposed split, optionally replacing it with
// reviewer-edited boundaries. Edits go through reconciliation again so the
// stored span set always tiles the bundle.
func (s *batchService) ValidateSplit(ctx context.Context, id uuid.UUID, edits []domain.CandidateSpan) (*domain.Batch, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.State != domain.BatchStateSplitProposed {
		return nil, fmt.Errorf("%w: state %s", domain.ErrSplitNotProposed, batch.State)
	}

	if len(edits) > 0 {
		spans := split.Reconcile(edits, batch.PageCount)
		spansJSON, err := json.Marshal(spans)
		if err != nil {
			return nil, fmt.Errorf("marshaling edited spans: %w", err)
		}
		if err := s.repo.SaveValidatedSpans(ctx, batch.ID, spansJSON, batch.SplitConfidence, batch.PageCount); err != nil {
			return nil, err
		}
		batch.ValidatedSpans = spansJSON
	}

	if err := s.transition(ctx, batch, domain.BatchStateSplitValidated); err != nil {
		return nil, err
	}
	return batch, nil
}

// ExtractData materializes the validated spans into sub-documents and runs
// field extraction over each one sequentially. A failure on one span is
// recorded on its record without aborting the others; a materialization
// failure before any sub-document exists fails the whole batch.
func (s *batchService) ExtractData(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.State != domain.BatchStateSplitValidated {
		return nil, fmt.Errorf("%w: state %s", domain.ErrSplitNotValidated, batch.State)
	}

	var spans []domain.ValidatedSpan
	if err := json.Unmarshal(batch.ValidatedSpans, &spans); err != nil {
		return nil, fmt.Errorf("unmarshaling validated spans: %w", err)
	}

	if err := s.transition(ctx, batch, domain.BatchStateExtractingData); err != nil {
		return nil, err
	}

	source, err := s.storage.Download(ctx, batch.S3Bucket, batch.S3Key)
	if err != nil {
		return nil, s.failBatch(ctx, batch, fmt.Errorf("downloading bundle: %w", err))
	}

	parts, err := s.materializer.Split(ctx, source, spans)
	if err != nil {
		// No sub-document exists yet; the batch cannot proceed.
		return nil, s.failBatch(ctx, batch, fmt.Errorf("materializing split: %w", err))
	}

	partBySpan := make(map[uuid.UUID]port.SplitResult, len(parts))
	for _, p := range parts {
		partBySpan[p.SpanID] = p
	}

	records := make([]schema.InvoiceRecord, 0, len(spans))
	for _, span := range spans {
		records = append(records, s.extractSpan(ctx, batch, span, partBySpan[span.ID]))
	}

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return nil, s.failBatch(ctx, batch, fmt.Errorf("marshaling records: %w", err))
	}
	if err := s.repo.SaveRecords(ctx, batch.ID, recordsJSON); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, batch, domain.BatchStateDataValidationPending); err != nil {
		return nil, err
	}

	log.Printf("batchService.ExtractData: batch %s extracted %d records", batch.ID, len(records))
	batch.Records = recordsJSON
	return batch, nil
}

// extractSpan runs the full per-sub-document pipeline for one span. All
// failures are absorbed into the returned record so sibling spans keep
// processing.
func (s *batchService) extractSpan(ctx context.Context, batch *domain.Batch, span domain.ValidatedSpan, part port.SplitResult) schema.InvoiceRecord {
	if part.Err != "" || part.Bytes == nil {
		rec := schema.NewInvoiceRecord(span)
		if part.Err != "" {
			rec.Error = fmt.Sprintf("split materialization failed: %s", part.Err)
		} else {
			rec.Error = "split materialization returned no part for this span"
		}
		log.Printf("batchService.extractSpan: batch %s span %s: %s", batch.ID, span.ID, rec.Error)
		return *rec
	}

	partKey := fmt.Sprintf("batches/%s/parts/%s.pdf", batch.ID, span.ID)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      batch.S3Bucket,
		Key:         partKey,
		Body:        bytes.NewReader(part.Bytes),
		ContentType: batch.ContentType,
		Size:        int64(len(part.Bytes)),
	}); err != nil {
		// The part bytes are still in hand; extraction can continue.
		log.Printf("batchService.extractSpan: batch %s span %s: storing part failed: %v", batch.ID, span.ID, err)
	}

	rec, err := s.orchestrator.Extract(ctx, span, part.Bytes)
	if err != nil {
		failed := schema.NewInvoiceRecord(span)
		failed.Error = err.Error()
		log.Printf("batchService.extractSpan: batch %s span %s: extraction failed: %v", batch.ID, span.ID, err)
		return *failed
	}

	normalize.Record(rec, s.guardrail)
	s.checker.Apply(rec)
	rec.Confidence = extract.AggregateConfidence(rec)
	return *rec
}

func (s *batchService) GetRecords(ctx context.Context, id uuid.UUID) ([]schema.InvoiceRecord, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(batch.Records) == 0 {
		return []schema.InvoiceRecord{}, nil
	}
	var records []schema.InvoiceRecord
	if err := json.Unmarshal(batch.Records, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling records: %w", err)
	}
	return records, nil
}

func (s *batchService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, batch.S3Bucket, batch.S3Key, s.s3cfg.PresignExpiry)
}

func (s *batchService) Delete(ctx context.Context, id uuid.UUID) error {
	batch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, batch.S3Bucket, batch.S3Key); err != nil {
		log.Printf("batchService.Delete: failed to delete bundle from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// transition applies a state change on the in-memory batch and persists it.
func (s *batchService) transition(ctx context.Context, batch *domain.Batch, to domain.BatchState) error {
	if err := batch.Transition(to); err != nil {
		return err
	}
	if err := s.repo.UpdateState(ctx, batch.ID, to); err != nil {
		return fmt.Errorf("persisting state %s: %w", to, err)
	}
	return nil
}

// failSplit marks a split-phase failure. PROCESSING_FAILED is re-entrant:
// the batch can be reprocessed once the upstream service recovers.
func (s *batchService) failSplit(ctx context.Context, batch *domain.Batch, cause error) error {
	log.Printf("batchService: batch %s split failed: %v", batch.ID, cause)
	if err := s.repo.SetError(ctx, batch.ID, domain.BatchStateProcessingFailed, cause.Error()); err != nil {
		log.Printf("batchService: batch %s: recording split failure: %v", batch.ID, err)
	}
	return cause
}

// failBatch marks a non-recoverable failure.
func (s *batchService) failBatch(ctx context.Context, batch *domain.Batch, cause error) error {
	log.Printf("batchService: batch %s failed: %v", batch.ID, cause)
	if err := s.repo.SetError(ctx, batch.ID, domain.BatchStateError, cause.Error()); err != nil {
		log.Printf("batchService: batch %s: recording failure: %v", batch.ID, err)
	}
	return cause
}
