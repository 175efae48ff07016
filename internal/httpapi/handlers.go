package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chalkboard/internal/fallback"
	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/platform/apierr"
	"github.com/yungbote/chalkboard/internal/platform/ctxutil"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

const (
	msgTopicRequired = "Topic is required"
	msgGenerate      = "Failed to generate drawing instructions"
)

type handlers struct {
	deps Deps
	log  *logger.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *handlers) topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": fallback.Topics()})
}

type generateRequest struct {
	Topic string `json:"topic"`
}

func (h *handlers) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.deps.MaxRequestBytes)
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		h.fail(c, apierr.BadRequest(msgTopicRequired))
		return
	}

	res, err := h.run(c, req.Topic)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header(SourceHeader, string(res.Source))
	c.JSON(http.StatusOK, res.Response)
}

func (h *handlers) run(c *gin.Context, topic string) (generation.Result, error) {
	res, err := h.deps.Generator.Generate(c.Request.Context(), topic)
	switch {
	case errors.Is(err, generation.ErrTopicRequired):
		return res, apierr.BadRequest(msgTopicRequired)
	case err != nil:
		return res, apierr.Internal(msgGenerate, err)
	}
	return res, nil
}

// fail writes err as {"error": message}. Causes are logged, never returned.
func (h *handlers) fail(c *gin.Context, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		ae = apierr.Internal("internal server error", err)
	}
	if ae.Status >= http.StatusInternalServerError {
		h.log.Error("request failed", append(ctxutil.LogFields(c.Request.Context()), "status", ae.Status, "error", err)...)
	}
	c.AbortWithStatusJSON(ae.Status, gin.H{"error": ae.Message})
}
