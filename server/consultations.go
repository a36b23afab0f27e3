package server

import (
	"context"

	"github.com/gin-gonic/gin"

	apperrors "github.com/OptimalGrowthPartner/Chiro-backend/errors"
	"github.com/OptimalGrowthPartner/Chiro-backend/pipeline"
)

// ConsultationRunner executes the consultation pipeline for one recording.
// *pipeline.Orchestrator satisfies it.
type ConsultationRunner interface {
	Run(ctx context.Context, req pipeline.UploadRequest) (*pipeline.ClinicalDocumentSet, error)
}

// RegisterConsultations mounts the consultation upload endpoint at
// POST /api/v1/consultations.
func (s *Server) RegisterConsultations(runner ConsultationRunner) {
	s.engine.POST("/api/v1/consultations", Consultations(runner))
}

// Consultations returns the consultation upload handler. It accepts a
// multipart form with the audio under the "file" field, streams it through
// the pipeline, and returns the assembled document set.
func Consultations(runner ConsultationRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			RespondWithError(c, apperrors.Validation("multipart form must include an audio file under the \"file\" field"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			RespondWithError(c, apperrors.Validation("uploaded file could not be read"))
			return
		}
		defer func() { _ = file.Close() }()

		result, err := runner.Run(c.Request.Context(), pipeline.UploadRequest{
			Filename: fileHeader.Filename,
			Data:     file,
		})
		if err != nil {
			RespondWithError(c, err)
			return
		}

		RespondOK(c, result)
	}
}
