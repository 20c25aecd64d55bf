// Package i18n — тексты бота на нескольких языках.
//
// Каталоги лежат в locales/<locale>.yaml и встраиваются в бинарник.
// Ключи в каждом каталоге одинаковые, недостающий ключ — ошибка загрузки.
// Подстановки пишутся в стиле fmt с индексами: "%[1]s — %[2]s".
// Аргументы передаются строками, числа форматирует вызывающий код.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLocale — язык, на который откатываются неизвестные локали.
const DefaultLocale = "ru-RU"

//go:embed locales/*.yaml
var embedded embed.FS

// Translator отдаёт текст по ключу. Неизвестный ключ возвращается как есть.
type Translator interface {
	T(key string, args ...any) string
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog — все загруженные локали.
type Catalog struct {
	builder  *catalog.Builder
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// Load читает встроенные каталоги.
func Load() (*Catalog, error) {
	return LoadFS(embedded)
}

// LoadFS читает каталоги locales/*.yaml из fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("поиск каталогов: %w", err)
	}
	sort.Strings(paths)

	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(language.MustParse(DefaultLocale))),
		messages: map[string]map[string]string{},
	}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("чтение каталога %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("разбор каталога %s: %w", p, err)
		}
		if err := c.add(p, file); err != nil {
			return nil, err
		}
	}

	base, ok := c.messages[DefaultLocale]
	if !ok {
		return nil, fmt.Errorf("нет каталога основной локали %s", DefaultLocale)
	}
	for locale, msgs := range c.messages {
		if missing := missingKeys(base, msgs); len(missing) > 0 {
			return nil, fmt.Errorf("в локали %s нет ключей: %s", locale, strings.Join(missing, ", "))
		}
		if extra := missingKeys(msgs, base); len(extra) > 0 {
			return nil, fmt.Errorf("в локали %s лишние ключи: %s", locale, strings.Join(extra, ", "))
		}
	}

	// основная локаль первой: при отсутствии совпадения матчер выбирает её
	c.tags = []language.Tag{language.MustParse(DefaultLocale)}
	for _, locale := range c.Locales() {
		if locale != DefaultLocale {
			c.tags = append(c.tags, language.MustParse(locale))
		}
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func (c *Catalog) add(p string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
		return fmt.Errorf("каталог %s: локаль %q не совпадает с именем файла", p, locale)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("каталог %s: пустой messages", p)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("каталог %s: некорректная локаль: %w", p, err)
	}
	for key, msg := range file.Messages {
		if err := c.builder.SetString(tag, key, msg); err != nil {
			return fmt.Errorf("каталог %s, ключ %s: %w", p, key, err)
		}
	}
	c.messages[locale] = file.Messages
	return nil
}

// Locales возвращает загруженные локали по алфавиту.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for l := range c.messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Keys возвращает ключи основной локали по алфавиту.
func (c *Catalog) Keys() []string {
	base := c.messages[DefaultLocale]
	out := make([]string, 0, len(base))
	for k := range base {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Printer создаёт переводчик для локали. Локаль подбирается по ближайшему
// совпадению среди загруженных ("en" → en-US), иначе DefaultLocale.
func (c *Catalog) Printer(locale string) *Printer {
	want, err := language.Parse(locale)
	if err != nil {
		return c.printer(c.tags[0])
	}
	return c.match(want)
}

// AcceptPrinter подбирает локаль по заголовку Accept-Language.
func (c *Catalog) AcceptPrinter(header string) *Printer {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return c.printer(c.tags[0])
	}
	return c.match(tags...)
}

func (c *Catalog) match(want ...language.Tag) *Printer {
	_, idx, _ := c.matcher.Match(want...)
	return c.printer(c.tags[idx])
}

func (c *Catalog) printer(tag language.Tag) *Printer {
	return &Printer{p: message.NewPrinter(tag, message.Catalog(c.builder))}
}

// Printer — Translator для одной локали.
type Printer struct {
	p *message.Printer
}

func (p *Printer) T(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

func missingKeys(want, got map[string]string) []string {
	var out []string
	for k := range want {
		if _, ok := got[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
