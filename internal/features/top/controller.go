package top

import (
	"context"
	"sync"
)

// View — отрисованный топ и состояние меню для площадки.
type View struct {
	Metric      MetricName `json:"metric"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Options     []Option   `json:"options"`
}

// Option — пункт меню выбора топа.
type Option struct {
	Name   MetricName `json:"name"`
	Label  string     `json:"label"`
	Active bool       `json:"active"`
}

// Controller — состояние одного меню топов: сообщество и выбранный топ.
// События одного меню обрабатываются по очереди.
type Controller struct {
	mu       sync.Mutex
	guildID  int64
	registry *Registry
	active   MetricName
}

// NewController создаёт меню сообщества. Начальный топ — первый в реестре.
func NewController(guildID int64, registry *Registry) *Controller {
	return &Controller{
		guildID:  guildID,
		registry: registry,
		active:   registry.First().Name,
	}
}

// GuildID — сообщество меню.
func (c *Controller) GuildID() int64 {
	return c.guildID
}

// Active — выбранный сейчас топ.
func (c *Controller) Active() MetricName {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Initial рисует выбранный топ.
func (c *Controller) Initial(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.registry.Lookup(c.active)
	if err != nil {
		return View{}, err
	}
	return c.registry.render(ctx, m, c.guildID)
}

// Select переключает меню на топ name и рисует его заново из базы.
// Неизвестное имя возвращает common.ErrUnknownMetric и состояние не меняет.
// Ошибка чтения топа возвращается, но выбор уже сделан.
func (c *Controller) Select(ctx context.Context, name MetricName) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.registry.Lookup(name)
	if err != nil {
		return View{}, err
	}
	c.active = m.Name
	return c.registry.render(ctx, m, c.guildID)
}
