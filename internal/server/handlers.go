package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"health-rag/internal/models"
)

const (
	internalErrorDetail = "An internal server error occurred. Please check the logs for more details."
	welcomeMessage      = "Welcome to PDF Semantic Search API"
)

// Service is the RAG surface the handlers call.
type Service interface {
	IngestUpload(ctx context.Context, upload io.Reader, filename, collection string) (models.IngestResult, error)
	Search(ctx context.Context, query, collection string, limit int) (models.SearchResponse, error)
	NutritionRecommendation(ctx context.Context, query string, limit int) (models.NutritionResponse, error)
}

type SearchRequest struct {
	Query          string `json:"query" binding:"required"`
	CollectionName string `json:"collection_name"`
	Limit          int    `json:"limit"`
}

type NutritionRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

type Handler struct {
	svc               Service
	defaultCollection string
	maxUploadSize     int64
}

func NewHandler(svc Service, defaultCollection string, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, defaultCollection: defaultCollection, maxUploadSize: maxUploadSize}
}

func errorBody(detail string) gin.H {
	return gin.H{"detail": detail}
}

func (h *Handler) Root(c *gin.Context) {
	log.Info().Msg("Root endpoint accessed")
	c.JSON(http.StatusOK, gin.H{"message": welcomeMessage})
}

func (h *Handler) UploadPDF(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody("Uploaded file is too large"))
			return
		}
		c.JSON(http.StatusUnprocessableEntity, errorBody("file: field required"))
		return
	}
	collection := c.DefaultPostForm("collection_name", h.defaultCollection)
	log.Info().Str("file", fileHeader.Filename).Str("collection", collection).Msg("Upload PDF endpoint accessed")

	if !strings.HasSuffix(fileHeader.Filename, ".pdf") {
		log.Warn().Str("file", fileHeader.Filename).Msg("Invalid file format")
		c.JSON(http.StatusBadRequest, errorBody("Only PDF files are supported"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer f.Close()

	result, err := h.svc.IngestUpload(c.Request.Context(), f, fileHeader.Filename, collection)
	if err != nil {
		h.internalError(c, err)
		return
	}
	log.Info().Str("status", result.Status).Str("message", result.Message).Msg("PDF upload finished")
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	log.Info().Str("query", req.Query).Str("collection", req.CollectionName).Int("limit", req.Limit).Msg("Search endpoint accessed")

	resp, err := h.svc.Search(c.Request.Context(), req.Query, req.CollectionName, req.Limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	log.Info().Int("results", len(resp.Results)).Msg("Search successful")
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) NutritionRecommendation(c *gin.Context) {
	var req NutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	log.Info().Str("query", req.Query).Int("limit", req.Limit).Msg("Nutrition recommendation endpoint accessed")

	resp, err := h.svc.NutritionRecommendation(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	log.Info().Str("region", resp.Region).Msg("Nutrition recommendation generated")
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, errorBody(internalErrorDetail))
}
