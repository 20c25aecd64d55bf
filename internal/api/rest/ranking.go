// Package rest — HTTP API только для чтения: те же топы, что в ботах, в JSON.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/guild-top/internal/common"
	"serotonyl.ru/guild-top/internal/features/top"
	"serotonyl.ru/guild-top/internal/i18n"
)

// RankingHandler отдаёт топы сообществ.
type RankingHandler struct {
	service       *top.Service
	catalog       *i18n.Catalog
	defaultLocale string
	markup        top.Markup
	queryTimeout  time.Duration
	logger        log.FieldLogger
}

// NewRankingHandler создаёт RankingHandler. Даты выводятся в часовом поясе loc.
func NewRankingHandler(service *top.Service, catalog *i18n.Catalog, defaultLocale string, loc *time.Location, queryTimeout time.Duration, logger log.FieldLogger) *RankingHandler {
	return &RankingHandler{
		service:       service,
		catalog:       catalog,
		defaultLocale: defaultLocale,
		markup:        top.PlainMarkup{Location: loc},
		queryTimeout:  queryTimeout,
		logger:        logger,
	}
}

// MetricEntry — пункт списка топов.
type MetricEntry struct {
	Name  top.MetricName `json:"name"`
	Label string         `json:"label"`
}

// Metrics возвращает топы в порядке меню.
// GET /api/guilds/:guild/top?lang=en-US
func (h *RankingHandler) Metrics(c *gin.Context) {
	if _, ok := h.guildID(c); !ok {
		return
	}
	reg := h.service.Registry(h.translator(c), h.markup)

	metrics := reg.Metrics()
	out := make([]MetricEntry, len(metrics))
	for i, m := range metrics {
		out[i] = MetricEntry{Name: m.Name, Label: m.Label}
	}
	c.JSON(http.StatusOK, gin.H{"default": reg.First().Name, "metrics": out})
}

// Top рисует один топ.
// GET /api/guilds/:guild/top/:metric?lang=en-US
func (h *RankingHandler) Top(c *gin.Context) {
	guildID, ok := h.guildID(c)
	if !ok {
		return
	}
	tr := h.translator(c)
	ctrl := top.NewController(guildID, h.service.Registry(tr, h.markup))

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()
	view, err := ctrl.Select(ctx, top.MetricName(c.Param("metric")))
	if err != nil {
		status := statusOf(err)
		entry := h.logger.WithError(err).WithFields(log.Fields{"guild_id": guildID, "metric": c.Param("metric")})
		if status >= http.StatusInternalServerError {
			entry.Error("Ошибка отрисовки топа")
		} else {
			entry.Debug("Топ не найден")
		}
		c.JSON(status, gin.H{"error": tr.T(top.ErrorKey(err))})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RankingHandler) guildID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("guild"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return 0, false
	}
	return id, true
}

// translator выбирает язык: ?lang=, затем Accept-Language, затем язык по умолчанию.
func (h *RankingHandler) translator(c *gin.Context) i18n.Translator {
	if lang := c.Query("lang"); lang != "" {
		return h.catalog.Printer(lang)
	}
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		return h.catalog.AcceptPrinter(accept)
	}
	return h.catalog.Printer(h.defaultLocale)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrUnknownMetric):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
