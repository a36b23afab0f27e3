package speech

import (
	"context"
	"strings"

	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient/rest"
)

// Extract fetches the result manifest of a completed job, locates the
// transcription artifact, and normalizes it to plain text: all recognized
// phrases' display text joined by single spaces, in manifest order,
// trimmed. An empty transcript is valid — the recording may simply contain
// no recognizable speech — and comes back as "".
func (c *Client) Extract(ctx context.Context, manifestURL string) (string, error) {
	manifest, err := rest.Get[fileManifest](ctx, c.rest, manifestURL)
	if err != nil {
		return "", apperrors.Extraction("fetching result manifest", err)
	}

	contentURL := ""
	for _, entry := range manifest.Data.Values {
		if entry.Kind == transcriptKind {
			contentURL = entry.Links.ContentURL
			break
		}
	}
	if contentURL == "" {
		return "", apperrors.Extraction("no transcription artifact in manifest", nil).
			WithDetail("artifacts", len(manifest.Data.Values))
	}

	// The content URL is pre-signed by the backend; no subscription key is
	// needed, and sending one to a foreign host would leak it.
	file, err := rest.Get[transcriptFile](ctx, c.rest, contentURL,
		rest.WithAuth(&httpclient.AuthConfig{Type: httpclient.AuthNone}))
	if err != nil {
		return "", apperrors.Extraction("fetching transcript file", err)
	}
	if file.Data.CombinedRecognizedPhrases == nil {
		return "", apperrors.Extraction("transcript file has no recognized-phrase list", nil)
	}

	parts := make([]string, 0, len(file.Data.CombinedRecognizedPhrases))
	for _, phrase := range file.Data.CombinedRecognizedPhrases {
		if phrase.Display != "" {
			parts = append(parts, phrase.Display)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
