package handler

import (
	"net/http"
	"strconv"

	"genstory-server/internal/models"
	"genstory-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CharacterHandler обслуживает HTTP эндпоинты персонажей.
type CharacterHandler struct {
	service service.CharacterService
	logger  *zap.Logger
}

// NewCharacterHandler создает обработчик персонажей.
func NewCharacterHandler(service service.CharacterService, logger *zap.Logger) *CharacterHandler {
	return &CharacterHandler{
		service: service,
		logger:  logger.Named("CharacterHandler"),
	}
}

// RegisterRoutes регистрирует маршруты персонажей в защищенной группе.
func (h *CharacterHandler) RegisterRoutes(group *gin.RouterGroup) {
	characters := group.Group("/characters")
	{
		characters.POST("", h.create)
		characters.GET("", h.list)
		characters.GET("/:id", h.get)
		characters.PUT("/:id", h.update)
		characters.DELETE("/:id", h.delete)
		characters.POST("/:id/generate", h.generate)
		characters.POST("/:id/finalize", h.finalize)
	}
}

// parsePageParams читает общие параметры пагинации из query.
func parsePageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: "Invalid id format"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *CharacterHandler) create(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()})
		return
	}

	character, err := h.service.Create(c.Request.Context(), userID, service.CreateCharacterInput{
		Name:         req.Name,
		Description:  req.Description,
		Traits:       req.Traits,
		StoryContext: req.StoryContext,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (h *CharacterHandler) list(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	page, size := parsePageParams(c)
	var status *models.CharacterStatus
	if raw := c.Query("status"); raw != "" {
		s := models.CharacterStatus(raw)
		status = &s
	}

	characters, total, err := h.service.List(c.Request.Context(), userID, status, page, size)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Character]{
		Items: characters,
		Total: total,
		Page:  page,
		Size:  size,
	})
}

func (h *CharacterHandler) get(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	character, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()})
		return
	}

	character, err := h.service.Update(c.Request.Context(), userID, id, service.UpdateCharacterInput{
		Name:         req.Name,
		Description:  req.Description,
		Traits:       req.Traits,
		StoryContext: req.StoryContext,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) delete(c *gin.Context) {
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

func (h *CharacterHandler) generate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	character, err := h.service.Generate(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) finalize(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	character, err := h.service.Finalize(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}
