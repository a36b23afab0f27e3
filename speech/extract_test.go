package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
)

// extractServer fakes the manifest and transcript-file endpoints. The
// transcript content URL stands in for a pre-signed foreign host, so it
// must never see the subscription key.
func extractServer(t *testing.T, transcriptBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/files", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"values":[
			{"kind":"TranscriptionReport","links":{"contentUrl":"` + srv.URL + `/report"}},
			{"kind":"Transcription","links":{"contentUrl":"` + srv.URL + `/content"}}
		]}`))
	})
	mux.HandleFunc("/content", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(subscriptionKeyHeader) != "" {
			t.Error("subscription key must not be sent to the transcript content URL")
		}
		_, _ = w.Write([]byte(transcriptBody))
	})
	return srv
}

func TestExtract_SinglePhrase(t *testing.T) {
	srv := extractServer(t, `{"combinedRecognizedPhrases":[{"display":"Hello."}]}`)

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	got, err := c.Extract(context.Background(), srv.URL+"/files")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Hello." {
		t.Errorf("expected %q with no added whitespace, got %q", "Hello.", got)
	}
}

func TestExtract_JoinsPhrasesWithSingleSpaces(t *testing.T) {
	srv := extractServer(t, `{"combinedRecognizedPhrases":[{"display":"Patient reports low back pain."},{"display":"Onset two weeks ago."}]}`)

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	got, err := c.Extract(context.Background(), srv.URL+"/files")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := "Patient reports low back pain. Onset two weeks ago."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_EmptyPhraseListIsEmptyTranscript(t *testing.T) {
	srv := extractServer(t, `{"combinedRecognizedPhrases":[]}`)

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	got, err := c.Extract(context.Background(), srv.URL+"/files")
	if err != nil {
		t.Fatalf("empty phrase list must not be an error: %v", err)
	}
	if got != "" {
		t.Errorf("expected explicit empty transcript, got %q", got)
	}
}

func TestExtract_NoTranscriptionArtifact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"values":[{"kind":"TranscriptionReport","links":{"contentUrl":"x"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	_, err := c.Extract(context.Background(), srv.URL+"/files")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExtraction {
		t.Errorf("expected EXTRACTION_ERROR, got %v", err)
	}
}

func TestExtract_MalformedTranscriptShape(t *testing.T) {
	srv := extractServer(t, `{"somethingElse":true}`)

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	_, err := c.Extract(context.Background(), srv.URL+"/files")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExtraction {
		t.Errorf("expected EXTRACTION_ERROR for missing phrase list, got %v", err)
	}
}

func TestExtract_ManifestFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, time.Millisecond, time.Second)
	_, err := c.Extract(context.Background(), srv.URL+"/files")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExtraction {
		t.Errorf("expected EXTRACTION_ERROR, got %v", err)
	}
}
