package handler

import (
	"net/http"

	"genstory-server/internal/models"
	"genstory-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoryHandler обслуживает HTTP эндпоинты историй.
type StoryHandler struct {
	service service.StoryService
	logger  *zap.Logger
}

// NewStoryHandler создает обработчик историй.
func NewStoryHandler(service service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service: service,
		logger:  logger.Named("StoryHandler"),
	}
}

// RegisterRoutes регистрирует маршруты историй в защищенной группе.
func (h *StoryHandler) RegisterRoutes(group *gin.RouterGroup) {
	stories := group.Group("/stories")
	{
		stories.POST("", h.create)
		stories.GET("", h.list)
		stories.GET("/:id", h.get)
		stories.PATCH("/:id", h.update)
		stories.DELETE("/:id", h.delete)
		stories.POST("/:id/refine", h.refine)
		stories.POST("/:id/content", h.createContent)
		stories.POST("/:id/cover_image", h.createCoverImage)
		stories.GET("/:id/cover_image", h.getCoverImage)
	}
}

func (h *StoryHandler) create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()})
		return
	}

	story, err := h.service.Create(c.Request.Context(), userID, service.CreateStoryInput{
		Title:        req.Title,
		Description:  req.Description,
		CharacterIDs: req.CharacterIDs,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *StoryHandler) list(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	page, size := parsePageParams(c)
	var status *models.StoryStatus
	if raw := c.Query("status"); raw != "" {
		s := models.StoryStatus(raw)
		status = &s
	}

	stories, total, err := h.service.List(c.Request.Context(), userID, status, page, size)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Story]{
		Items: stories,
		Total: total,
		Page:  page,
		Size:  size,
	})
}

func (h *StoryHandler) get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	story, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()})
		return
	}

	story, err := h.service.Update(c.Request.Context(), userID, id, service.UpdateStoryInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) delete(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) refine(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	story, err := h.service.Refine(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) createContent(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	story, err := h.service.CreateContent(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) createCoverImage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	image, err := h.service.CreateCoverImage(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCoverImageResponse(image))
}

func (h *StoryHandler) getCoverImage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	image, err := h.service.GetCoverImage(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCoverImageResponse(image))
}
