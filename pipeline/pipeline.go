// Package pipeline orchestrates one consultation request end to end:
// upload the audio, run the asynchronous transcription job, extract the
// transcript, and fan out the document generation calls.
//
// The orchestrator owns the failure policy. The linear stages (upload,
// submit, await, extract) fail the whole request on first error. The
// generation stage is isolated per document: a failed document is rendered
// inline as error text and never dropped from the response.
package pipeline

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/OptimalGrowthPartner/Chiro-backend/docgen"
	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
	"github.com/OptimalGrowthPartner/Chiro-backend/observability"
	"github.com/OptimalGrowthPartner/Chiro-backend/speech"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage"
)

// UploadRequest is one inbound consultation recording.
type UploadRequest struct {
	// Filename is the client-declared name, used only to validate the
	// extension and derive the storage key.
	Filename string
	// Data is the audio payload.
	Data io.Reader
}

// ClinicalDocumentSet is the assembled result of one pipeline run.
type ClinicalDocumentSet struct {
	Transcript     string                 `json:"transcript"`
	SOAPNote       string                 `json:"soap_note"`
	ReferralLetter string                 `json:"referral_letter"`
	Codes          docgen.StructuredCodes `json:"codes"`
}

// Transcriber drives the asynchronous transcription job. *speech.Client
// satisfies it.
type Transcriber interface {
	Submit(ctx context.Context, contentURL string) (*speech.JobRef, error)
	AwaitCompletion(ctx context.Context, ref *speech.JobRef) (*speech.Job, error)
	Extract(ctx context.Context, manifestURL string) (string, error)
}

// Generator produces the derived documents. *docgen.Generator satisfies it.
type Generator interface {
	SOAPNote(ctx context.Context, transcript string) (string, error)
	ReferralLetter(ctx context.Context, transcript string) (string, error)
	BillingCodes(ctx context.Context, transcript string) (docgen.StructuredCodes, error)
}

// Orchestrator sequences the pipeline stages for one request at a time.
// It is safe for concurrent use; each Run owns its request-scoped state.
type Orchestrator struct {
	cfg     Config
	store   storage.Storage
	speech  Transcriber
	docs    Generator
	log     *logger.Logger
	metrics *observability.Metrics
}

// New creates a pipeline orchestrator. metrics may be nil, in which case
// metric recording is skipped.
func New(cfg Config, store storage.Storage, transcriber Transcriber, docs Generator, log *logger.Logger, metrics *observability.Metrics) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		speech:  transcriber,
		docs:    docs,
		log:     log.WithComponent("pipeline"),
		metrics: metrics,
	}, nil
}

// Run executes the full pipeline for one uploaded recording.
func (o *Orchestrator) Run(ctx context.Context, req UploadRequest) (*ClinicalDocumentSet, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
	defer span.End()
	if o.metrics != nil {
		o.metrics.RecordPipelineStart(ctx)
	}

	result, err := o.run(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
		if appErr, ok := apperrors.AsAppError(err); ok && o.metrics != nil {
			o.metrics.RecordError(ctx, string(appErr.Code), "pipeline")
		}
	}
	if o.metrics != nil {
		o.metrics.RecordPipelineEnd(ctx, status, time.Since(start))
	}
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, req UploadRequest) (*ClinicalDocumentSet, error) {
	ext := strings.ToLower(path.Ext(req.Filename))
	if !o.cfg.allowed(ext) {
		return nil, apperrors.Validation("unsupported audio format " + ext + "; supported: " + strings.Join(o.cfg.AllowedExtensions, ", "))
	}

	key := storage.ObjectKey(req.Filename)

	handle, err := o.upload(ctx, key, req.Data)
	if err != nil {
		return nil, err
	}
	// The uploaded object is scratch space for the transcription backend.
	// Remove it on the way out regardless of outcome; the pipeline result
	// never references it.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := o.store.Delete(cleanupCtx, key); err != nil {
			o.log.Warn("blob cleanup failed",
				logger.Fields(logger.FieldBlobKey, key, "error", err.Error()))
		}
	}()

	job, err := o.transcribe(ctx, handle)
	if err != nil {
		return nil, err
	}

	transcript, err := o.extract(ctx, job)
	if err != nil {
		return nil, err
	}
	o.log.Info("transcript extracted",
		logger.Fields(logger.FieldJobID, job.Ref.ID, "length", len(transcript)))

	result := o.generate(ctx, transcript)
	o.log.Info("pipeline completed",
		logger.Fields(logger.FieldBlobKey, key, logger.FieldJobID, job.Ref.ID))
	return result, nil
}

// upload writes the audio to object storage and returns the read-scoped
// handle consumed by the transcription backend.
func (o *Orchestrator) upload(ctx context.Context, key string, data io.Reader) (*storage.Handle, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStorageUpload)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBlobKey, key)
	start := time.Now()

	if err := o.store.Upload(ctx, key, data); err != nil {
		o.recordStage(ctx, "upload", "error", start)
		return nil, apperrors.Storage("uploading audio to object storage failed", err)
	}

	url, err := o.store.SignedURL(ctx, key, o.cfg.URLExpiry)
	if err != nil {
		o.recordStage(ctx, "upload", "error", start)
		return nil, apperrors.Storage("signing object URL failed", err)
	}

	o.recordStage(ctx, "upload", "ok", start)
	return &storage.Handle{Key: key, URL: url, ExpiresAt: time.Now().Add(o.cfg.URLExpiry)}, nil
}

// transcribe submits the job and waits for a terminal state. A remote
// Failed status becomes a RemoteFailure carrying the backend's detail
// verbatim; the deadline case surfaces as a TimeoutError from the driver.
func (o *Orchestrator) transcribe(ctx context.Context, handle *storage.Handle) (*speech.Job, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscription)
	defer span.End()
	start := time.Now()

	ref, err := o.speech.Submit(ctx, handle.URL)
	if err != nil {
		o.recordStage(ctx, "transcription", "error", start)
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrJobID, ref.ID)

	job, err := o.speech.AwaitCompletion(ctx, ref)
	if err != nil {
		o.recordStage(ctx, "transcription", "error", start)
		return nil, err
	}
	if job.Status == speech.StatusFailed {
		o.recordStage(ctx, "transcription", "failed", start)
		return nil, apperrors.RemoteFailure(job.ErrorDetail)
	}

	o.recordStage(ctx, "transcription", "ok", start)
	return job, nil
}

func (o *Orchestrator) extract(ctx context.Context, job *speech.Job) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanExtraction)
	defer span.End()
	start := time.Now()

	transcript, err := o.speech.Extract(ctx, job.ManifestURL)
	if err != nil {
		o.recordStage(ctx, "extraction", "error", start)
		return "", err
	}
	o.recordStage(ctx, "extraction", "ok", start)
	return transcript, nil
}

// generate fans out the three document calls concurrently and waits for
// all of them. Failures are isolated per document: the failing document's
// slot carries the error message, the siblings keep their results.
func (o *Orchestrator) generate(ctx context.Context, transcript string) *ClinicalDocumentSet {
	ctx, span := observability.StartSpan(ctx, observability.SpanGeneration)
	defer span.End()

	result := &ClinicalDocumentSet{Transcript: transcript}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		note, err := o.docs.SOAPNote(ctx, transcript)
		if err != nil {
			note = o.documentError(ctx, docgen.DocumentSOAPNote, err)
		} else {
			o.recordDocument(ctx, docgen.DocumentSOAPNote, "ok")
		}
		result.SOAPNote = note
	}()

	go func() {
		defer wg.Done()
		letter, err := o.docs.ReferralLetter(ctx, transcript)
		if err != nil {
			letter = o.documentError(ctx, docgen.DocumentReferralLetter, err)
		} else {
			o.recordDocument(ctx, docgen.DocumentReferralLetter, "ok")
		}
		result.ReferralLetter = letter
	}()

	go func() {
		defer wg.Done()
		codes, err := o.docs.BillingCodes(ctx, transcript)
		if err != nil {
			codes = docgen.ErrorCodes(o.documentError(ctx, docgen.DocumentBillingCodes, err))
		} else {
			o.recordDocument(ctx, docgen.DocumentBillingCodes, "ok")
		}
		result.Codes = codes
	}()

	wg.Wait()
	return result
}

// documentError logs and records one failed document and returns the text
// rendered in its place.
func (o *Orchestrator) documentError(ctx context.Context, document string, err error) string {
	o.log.Error("document generation failed",
		logger.Fields(logger.FieldDocument, document, "error", err.Error()))
	o.recordDocument(ctx, document, "error")

	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return "Generating " + document + " failed: " + err.Error()
}

func (o *Orchestrator) recordStage(ctx context.Context, stage, status string, start time.Time) {
	if o.metrics != nil {
		o.metrics.RecordStage(ctx, stage, status, time.Since(start))
	}
}

func (o *Orchestrator) recordDocument(ctx context.Context, document, status string) {
	if o.metrics != nil {
		o.metrics.RecordDocument(ctx, document, status)
	}
}
