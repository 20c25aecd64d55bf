// Package economy — repository.go читает настройки сообществ из TOML-файла.
//
// Формат файла:
//
//	[default]
//	coin = "пленки"
//	forms = ["пленка", "пленки", "пленок"]
//
//	[guilds."-1001234567890"]
//	coin = "монеты"
//	forms = ["монета", "монеты", "монет"]
package economy

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type settingsFile struct {
	Default *Settings           `toml:"default"`
	Guilds  map[string]Settings `toml:"guilds"`
}

// Repository хранит настройки, прочитанные при старте. Файл не перечитывается.
type Repository struct {
	fallback Settings
	guilds   map[int64]Settings
}

// NewRepository создаёт репозиторий только с настройками по умолчанию.
func NewRepository(fallback Settings) *Repository {
	return &Repository{fallback: fallback, guilds: map[int64]Settings{}}
}

// LoadFile читает TOML-файл. Секция [default] из файла заменяет fallback.
func LoadFile(path string, fallback Settings) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть настройки экономики: %w", err)
	}
	defer f.Close()
	return Load(f, fallback)
}

// Load читает настройки из r.
func Load(r io.Reader, fallback Settings) (*Repository, error) {
	var file settingsFile
	md, err := toml.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора настроек экономики: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("неизвестные ключи в настройках экономики: %v", undecoded)
	}

	repo := NewRepository(fallback)
	if file.Default != nil {
		if err := file.Default.Validate(); err != nil {
			return nil, fmt.Errorf("секция default: %w", err)
		}
		repo.fallback = *file.Default
	}
	for key, s := range file.Guilds {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("некорректный ID сообщества %q: %w", key, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("сообщество %d: %w", id, err)
		}
		repo.guilds[id] = s
	}
	return repo, nil
}

// Get возвращает настройки сообщества или настройки по умолчанию.
func (r *Repository) Get(guildID int64) Settings {
	if s, ok := r.guilds[guildID]; ok {
		return s
	}
	return r.fallback
}

// Len — сколько сообществ настроено отдельно.
func (r *Repository) Len() int {
	return len(r.guilds)
}
