package api

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hall-compliance/internal/vision"
)

type indexPolicyRequest struct {
	Text string `json:"text" binding:"required"`
}

type assessRequest struct {
	Objects  []vision.DetectedObject `json:"objects" binding:"required"`
	RoomType string                  `json:"room_type"`
}

type checkObjectRequest struct {
	Object     string  `json:"object" binding:"required"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIndexPolicy(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document name required"})
		return
	}

	var req indexPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "policy text required"})
		return
	}

	summary, err := s.pipeline.IndexPolicy(c.Request.Context(), name, req.Text)
	if err != nil {
		logrus.WithError(err).Error("index policy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to index policy"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSearchRules(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q required"})
		return
	}
	k := 5
	if raw := c.Query("k"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			k = v
		}
	}

	matches, err := s.pipeline.SearchRules(c.Request.Context(), query, k)
	if err != nil {
		logrus.WithError(err).Error("search rules")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rule search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (s *Server) handleClearRules(c *gin.Context) {
	if err := s.pipeline.ClearRules(c.Request.Context()); err != nil {
		logrus.WithError(err).Error("clear rules")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) handleAssess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "objects required"})
		return
	}

	var imageContext *vision.Context
	if req.RoomType != "" {
		imageContext = &vision.Context{RoomType: req.RoomType}
	}

	verdict := s.pipeline.AssessObjects(c.Request.Context(), req.Objects, imageContext)
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleAssessImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	documentName := strings.TrimSpace(c.PostForm("document_name"))
	if documentName == "" {
		documentName = "uploaded_policy"
	}
	policyText := c.PostForm("policy_text")

	result := s.pipeline.Report(c.Request.Context(), img, documentName, policyText)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCheckObject(c *gin.Context) {
	var req checkObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object required"})
		return
	}

	verdict := s.pipeline.CheckObject(c.Request.Context(), req.Object, req.Category, req.Confidence)
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	assessments, err := s.pipeline.History(limit)
	if err != nil {
		logrus.WithError(err).Error("load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load assessments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}
