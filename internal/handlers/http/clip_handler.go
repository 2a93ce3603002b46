package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hansubae/Ghighlights/internal/core/domain"
	"github.com/hansubae/Ghighlights/internal/core/ports"
	"github.com/hansubae/Ghighlights/internal/core/services"
	"github.com/hansubae/Ghighlights/internal/infrastructure/middleware"
	apperrors "github.com/hansubae/Ghighlights/pkg/errors"
	"github.com/hansubae/Ghighlights/pkg/utils"
	"github.com/hansubae/Ghighlights/pkg/validation"

	"github.com/gin-gonic/gin"
)

// Static category and subscription sets shown in the sidebar. Uploads
// are not constrained to these games.
var (
	categories = []domain.Category{
		{ID: "zelda", Name: "The Legend of Zelda"},
		{ID: "mario-kart", Name: "Mario Kart"},
		{ID: "fortnite", Name: "Fortnite"},
		{ID: "lol", Name: "League of Legends"},
		{ID: "minecraft", Name: "Minecraft"},
		{ID: "among-us", Name: "Among Us"},
	}

	subscriptions = []domain.Subscription{
		{ID: "gaming-god", Name: "GamingGod"},
		{ID: "speed-runner", Name: "SpeedRunner"},
		{ID: "lol-pro", Name: "LoLPro"},
	}
)

type ClipHandler struct {
	clipService    ports.ClipService
	viewService    ports.ViewService
	media          ports.MediaStore
	authService    services.AuthService
	baseURL        string
	maxUploadBytes int64
}

func NewClipHandler(
	clipService ports.ClipService,
	viewService ports.ViewService,
	media ports.MediaStore,
	authService services.AuthService,
	baseURL string,
	maxUploadBytes int64,
) *ClipHandler {
	return &ClipHandler{
		clipService:    clipService,
		viewService:    viewService,
		media:          media,
		authService:    authService,
		baseURL:        baseURL,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *ClipHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/videos", h.ListClips)
		api.GET("/videos/search", h.SearchClips)
		api.GET("/videos/:id", h.GetClip)
		api.POST("/videos", h.UploadClip)
		api.POST("/videos/:id/view", h.RecordView)
		api.POST("/videos/:id/like", h.LikeClip)
		api.DELETE("/videos/:id", middleware.AuthMiddleware(h.authService), h.DeleteClip)

		api.GET("/categories", h.ListCategories)
		api.GET("/subscriptions", h.ListSubscriptions)
	}
}

func (h *ClipHandler) ListClips(c *gin.Context) {
	order := domain.SortOrder(c.DefaultQuery("sort", string(domain.SortLatest)))

	clips, err := h.clipService.ListClips(c.Request.Context(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": clips})
}

func (h *ClipHandler) SearchClips(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title query parameter required"})
		return
	}

	clips, err := h.clipService.SearchClips(c.Request.Context(), title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": clips})
}

func (h *ClipHandler) GetClip(c *gin.Context) {
	id, ok := clipIDParam(c)
	if !ok {
		return
	}

	clip, err := h.clipService.GetClip(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrClipNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": clip})
}

// UploadClip stores the binary payload first and persists the record
// after, so the announcement other viewers receive always points at a
// fetchable video.
func (h *ClipHandler) UploadClip(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	title := c.PostForm("title")
	game := c.PostForm("game")
	user := c.PostForm("user")

	if err := validation.ValidateClipTitle(title); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateGameTag(game); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateUploaderName(user); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.Error(apperrors.NewInvalidInputError("video file required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	name := utils.GenerateMediaName(fileHeader.Filename)
	if err := h.media.Save(c.Request.Context(), name, file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store video"})
		return
	}

	clip := &domain.Clip{
		Title:    utils.SanitizeString(title),
		Game:     utils.SanitizeString(game),
		User:     utils.SanitizeString(user),
		VideoURL: h.baseURL + "/uploads/" + name,
	}

	created, err := h.clipService.PublishClip(c.Request.Context(), clip)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidClip) {
			c.Error(apperrors.NewInvalidInputError("invalid clip fields"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": created})
}

// RecordView counts at most one view per clip per network origin within
// the rolling window. A ledger outage rejects the view rather than
// guessing.
func (h *ClipHandler) RecordView(c *gin.Context) {
	id, ok := clipIDParam(c)
	if !ok {
		return
	}

	clientID := domain.ClientID(middleware.ClientIP(c.Request))

	decision, count, err := h.viewService.RecordView(c.Request.Context(), id, clientID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrClipNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if errors.Is(err, domain.ErrLedgerUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "view tracking unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counted": decision.Accepted,
		"views":   count,
	})
}

func (h *ClipHandler) LikeClip(c *gin.Context) {
	id, ok := clipIDParam(c)
	if !ok {
		return
	}

	likes, err := h.clipService.LikeClip(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrClipNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func (h *ClipHandler) DeleteClip(c *gin.Context) {
	id, ok := clipIDParam(c)
	if !ok {
		return
	}

	if err := h.clipService.DeleteClip(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrClipNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ClipHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ClipHandler) ListSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}

func clipIDParam(c *gin.Context) (domain.ClipID, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return 0, false
	}
	return domain.ClipID(id), true
}
