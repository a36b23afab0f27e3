package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OptimalGrowthPartner/Chiro-backend/docgen"
	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
	"github.com/OptimalGrowthPartner/Chiro-backend/speech"
)

// --- stubs ---

type stubStorage struct {
	mu         sync.Mutex
	uploads    map[string][]byte
	deleted    []string
	signExpiry time.Duration
	uploadErr  error
	signErr    error
}

func newStubStorage() *stubStorage {
	return &stubStorage{uploads: map[string][]byte{}}
}

func (s *stubStorage) Upload(_ context.Context, key string, reader io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = data
	return nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uploads[key]
	return ok, nil
}

func (s *stubStorage) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	s.mu.Lock()
	s.signExpiry = expiry
	s.mu.Unlock()
	return "https://blobs.example.com/" + key + "?sig=read", nil
}

type stubTranscriber struct {
	submitErr    error
	awaitErr     error
	extractErr   error
	job          *speech.Job
	transcript   string
	submittedURL string
}

func (s *stubTranscriber) Submit(_ context.Context, contentURL string) (*speech.JobRef, error) {
	s.submittedURL = contentURL
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &speech.JobRef{ID: "job-1", Location: "https://speech.example.com/transcriptions/job-1"}, nil
}

func (s *stubTranscriber) AwaitCompletion(_ context.Context, ref *speech.JobRef) (*speech.Job, error) {
	if s.awaitErr != nil {
		return nil, s.awaitErr
	}
	if s.job != nil {
		job := *s.job
		job.Ref = *ref
		return &job, nil
	}
	return &speech.Job{Ref: *ref, Status: speech.StatusSucceeded, ManifestURL: "https://speech.example.com/files"}, nil
}

func (s *stubTranscriber) Extract(_ context.Context, _ string) (string, error) {
	if s.extractErr != nil {
		return "", s.extractErr
	}
	return s.transcript, nil
}

type stubGenerator struct {
	mu          sync.Mutex
	inputs      []string
	soapErr     error
	referralErr error
	codesErr    error
}

func (g *stubGenerator) record(transcript string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs = append(g.inputs, transcript)
}

func (g *stubGenerator) SOAPNote(_ context.Context, transcript string) (string, error) {
	g.record(transcript)
	if g.soapErr != nil {
		return "", g.soapErr
	}
	return "soap for: " + transcript, nil
}

func (g *stubGenerator) ReferralLetter(_ context.Context, transcript string) (string, error) {
	g.record(transcript)
	if g.referralErr != nil {
		return "", g.referralErr
	}
	return "referral for: " + transcript, nil
}

func (g *stubGenerator) BillingCodes(_ context.Context, transcript string) (docgen.StructuredCodes, error) {
	g.record(transcript)
	if g.codesErr != nil {
		return docgen.StructuredCodes{}, g.codesErr
	}
	return docgen.StructuredCodes{
		CPTCodes:   []docgen.CodeEntry{{Code: "98940", Description: "CMT 1-2 regions"}},
		ICD10Codes: []docgen.CodeEntry{{Code: "M54.50", Description: "Low back pain"}},
	}, nil
}

func newTestOrchestrator(t *testing.T, store *stubStorage, transcriber *stubTranscriber, docs *stubGenerator) *Orchestrator {
	t.Helper()
	o, err := New(Config{}, store, transcriber, docs, logger.NewDefault("test"), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return o
}

// --- tests ---

func TestRun_EndToEnd(t *testing.T) {
	const transcript = "Patient reports low back pain."

	store := newStubStorage()
	transcriber := &stubTranscriber{transcript: transcript}
	docs := &stubGenerator{}
	o := newTestOrchestrator(t, store, transcriber, docs)

	result, err := o.Run(context.Background(), UploadRequest{
		Filename: "visit.wav",
		Data:     strings.NewReader("RIFF...audio bytes..."),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Transcript != transcript {
		t.Errorf("transcript = %q, want %q", result.Transcript, transcript)
	}
	if result.SOAPNote != "soap for: "+transcript {
		t.Errorf("soap note = %q", result.SOAPNote)
	}
	if result.ReferralLetter != "referral for: "+transcript {
		t.Errorf("referral letter = %q", result.ReferralLetter)
	}
	if len(result.Codes.CPTCodes) != 1 || result.Codes.CPTCodes[0].Code != "98940" {
		t.Errorf("codes = %+v", result.Codes)
	}

	// Each generation call received exactly the extracted transcript.
	if len(docs.inputs) != 3 {
		t.Fatalf("generation calls = %d, want 3", len(docs.inputs))
	}
	for _, in := range docs.inputs {
		if in != transcript {
			t.Errorf("generation input = %q, want %q", in, transcript)
		}
	}

	// One object uploaded under a uuid-prefixed key, signed URL handed to
	// the transcriber, and the blob removed afterwards.
	if len(store.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.uploads))
	}
	var key string
	for k := range store.uploads {
		key = k
	}
	if !strings.HasSuffix(key, "_visit.wav") {
		t.Errorf("key = %q, want uuid-prefixed visit.wav", key)
	}
	if !strings.Contains(transcriber.submittedURL, key) {
		t.Errorf("submitted URL %q does not reference key %q", transcriber.submittedURL, key)
	}
	if len(store.deleted) != 1 || store.deleted[0] != key {
		t.Errorf("deleted = %v, want [%s]", store.deleted, key)
	}
}

func TestRun_SignedURLUsesConfiguredExpiry(t *testing.T) {
	store := newStubStorage()
	o, err := New(Config{URLExpiry: 30 * time.Minute}, store, &stubTranscriber{}, &stubGenerator{}, logger.NewDefault("test"), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := o.Run(context.Background(), UploadRequest{
		Filename: "visit.wav",
		Data:     strings.NewReader("RIFF"),
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if store.signExpiry != 30*time.Minute {
		t.Errorf("signed URL expiry = %v, want 30m", store.signExpiry)
	}
}

func TestRun_RejectsUnsupportedExtension(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{}
	o := newTestOrchestrator(t, store, transcriber, &stubGenerator{})

	_, err := o.Run(context.Background(), UploadRequest{Filename: "notes.pdf", Data: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Code != apperrors.ErrCodeValidation {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.ErrCodeValidation)
	}

	// Validation failures never reach a remote service.
	if len(store.uploads) != 0 {
		t.Errorf("uploads = %d, want 0", len(store.uploads))
	}
	if transcriber.submittedURL != "" {
		t.Errorf("submit called with %q", transcriber.submittedURL)
	}
}

func TestRun_ExtensionCaseInsensitive(t *testing.T) {
	store := newStubStorage()
	o := newTestOrchestrator(t, store, &stubTranscriber{transcript: "hi"}, &stubGenerator{})

	if _, err := o.Run(context.Background(), UploadRequest{Filename: "VISIT.WAV", Data: strings.NewReader("x")}); err != nil {
		t.Fatalf("Run failed for uppercase extension: %v", err)
	}
}

func TestRun_UploadFailure(t *testing.T) {
	store := newStubStorage()
	store.uploadErr = errors.New("503 service unavailable")
	o := newTestOrchestrator(t, store, &stubTranscriber{}, &stubGenerator{})

	_, err := o.Run(context.Background(), UploadRequest{Filename: "visit.wav", Data: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Code != apperrors.ErrCodeStorage {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.ErrCodeStorage)
	}
	// Nothing was uploaded, so nothing to clean up.
	if len(store.deleted) != 0 {
		t.Errorf("deleted = %v, want none", store.deleted)
	}
}

func TestRun_SubmissionFailureStillCleansUp(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{submitErr: apperrors.Submission("job rejected", nil)}
	o := newTestOrchestrator(t, store, transcriber, &stubGenerator{})

	_, err := o.Run(context.Background(), UploadRequest{Filename: "visit.mp3", Data: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeSubmission {
		t.Fatalf("err = %v, want submission AppError", err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted = %v, want the uploaded blob", store.deleted)
	}
}

func TestRun_RemoteFailureCarriesDetail(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{
		job: &speech.Job{Status: speech.StatusFailed, ErrorDetail: "InvalidAudio: unsupported codec"},
	}
	o := newTestOrchestrator(t, store, transcriber, &stubGenerator{})

	_, err := o.Run(context.Background(), UploadRequest{Filename: "visit.wav", Data: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Code != apperrors.ErrCodeRemoteFailure {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.ErrCodeRemoteFailure)
	}
	if appErr.Details["remote_detail"] != "InvalidAudio: unsupported codec" {
		t.Errorf("remote detail = %v", appErr.Details["remote_detail"])
	}
}

func TestRun_TimeoutPropagates(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{awaitErr: apperrors.Timeout("transcription.poll")}
	o := newTestOrchestrator(t, store, transcriber, &stubGenerator{})

	_, err := o.Run(context.Background(), UploadRequest{Filename: "visit.wav", Data: strings.NewReader("x")})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeTimeout {
		t.Fatalf("err = %v, want timeout AppError", err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted = %v, want the uploaded blob", store.deleted)
	}
}

func TestRun_PerDocumentIsolation(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{transcript: "visit transcript"}
	docs := &stubGenerator{soapErr: apperrors.Generation(docgen.DocumentSOAPNote, "model overloaded", nil)}
	o := newTestOrchestrator(t, store, transcriber, docs)

	result, err := o.Run(context.Background(), UploadRequest{Filename: "visit.wav", Data: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("a single failed document must not fail the run: %v", err)
	}

	// The failed document is rendered inline, not dropped.
	if !strings.Contains(result.SOAPNote, "soap_note") || !strings.Contains(result.SOAPNote, "model overloaded") {
		t.Errorf("soap note slot = %q, want inline error text", result.SOAPNote)
	}
	if result.ReferralLetter != "referral for: visit transcript" {
		t.Errorf("referral letter = %q", result.ReferralLetter)
	}
	if len(result.Codes.CPTCodes) != 1 || result.Codes.CPTCodes[0].Code != "98940" {
		t.Errorf("codes = %+v", result.Codes)
	}
}

func TestRun_BillingCodesFailureYieldsSentinel(t *testing.T) {
	store := newStubStorage()
	transcriber := &stubTranscriber{transcript: "visit transcript"}
	docs := &stubGenerator{codesErr: apperrors.Generation(docgen.DocumentBillingCodes, "model overloaded", nil)}
	o := newTestOrchestrator(t, store, transcriber, docs)

	result, err := o.Run(context.Background(), UploadRequest{Filename: "visit.wav", Data: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Codes.IsFallback() {
		t.Fatalf("codes = %+v, want sentinel", result.Codes)
	}
	if result.SOAPNote == "" || result.ReferralLetter == "" {
		t.Error("sibling documents must still be produced")
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.URLExpiry != time.Hour {
		t.Errorf("url expiry = %v, want 1h", cfg.URLExpiry)
	}
	for _, ext := range []string{".wav", ".mp3", ".m4a", ".ogg", ".flac", ".webm"} {
		if !cfg.allowed(ext) {
			t.Errorf("extension %s not allowed by default", ext)
		}
	}
	if cfg.allowed(".pdf") {
		t.Error(".pdf must not be allowed")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{AllowedExtensions: []string{"wav"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for extension without dot")
	}

	cfg = Config{AllowedExtensions: []string{".WAV"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for uppercase extension")
	}

	cfg = Config{AllowedExtensions: []string{".wav"}, URLExpiry: time.Hour}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
