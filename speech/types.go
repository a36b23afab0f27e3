package speech

import "time"

// Status is the state of an asynchronous transcription job.
type Status string

// Remote job states as reported by the transcription backend, plus
// StatusTimedOut, a local terminal state the driver assigns when the
// polling deadline elapses. The backend never reports TimedOut.
const (
	StatusNotStarted Status = "NotStarted"
	StatusRunning    Status = "Running"
	StatusSucceeded  Status = "Succeeded"
	StatusFailed     Status = "Failed"
	StatusTimedOut   Status = "TimedOut"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusTimedOut
}

// JobRef identifies a submitted transcription job.
type JobRef struct {
	// ID is the backend-assigned job identifier, when derivable from the
	// location URL.
	ID string
	// Location is the absolute URL of the job resource to poll.
	Location string
	// SubmittedAt is when the submission was accepted.
	SubmittedAt time.Time
}

// Job is the observed state of a transcription job. The backend owns the
// authoritative state; the driver only ever reads it.
type Job struct {
	Ref JobRef
	// Status is the last observed job status.
	Status Status
	// ManifestURL points at the result-file manifest. Present only when
	// Status is Succeeded.
	ManifestURL string
	// ErrorDetail carries the remote-reported failure verbatim. Present
	// only when Status is Failed.
	ErrorDetail string
}

// --- backend wire types ---

// submitRequest is the job submission body.
type submitRequest struct {
	ContentURLs []string `json:"contentUrls"`
	Locale      string   `json:"locale"`
	DisplayName string   `json:"displayName"`
}

// jobResource is the job status resource returned by the backend.
type jobResource struct {
	Self   string `json:"self"`
	Status Status `json:"status"`
	Links  struct {
		Files string `json:"files"`
	} `json:"links"`
	Properties struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"properties"`
	StatusMessage string `json:"statusMessage"`
}

// errorDetail extracts the remote failure text, preferring the structured
// error over the flat status message.
func (j *jobResource) errorDetail() string {
	if j.Properties.Error.Message != "" {
		if j.Properties.Error.Code != "" {
			return j.Properties.Error.Code + ": " + j.Properties.Error.Message
		}
		return j.Properties.Error.Message
	}
	return j.StatusMessage
}

// fileManifest lists the output artifacts of a completed job.
type fileManifest struct {
	Values []manifestEntry `json:"values"`
}

// manifestEntry is one artifact in the manifest, tagged with a kind.
type manifestEntry struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Links struct {
		ContentURL string `json:"contentUrl"`
	} `json:"links"`
}

// transcriptFile is the transcription artifact payload.
type transcriptFile struct {
	CombinedRecognizedPhrases []struct {
		Display string `json:"display"`
	} `json:"combinedRecognizedPhrases"`
}

// transcriptKind is the manifest kind tagging the transcript artifact.
const transcriptKind = "Transcription"
