package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageConfig 存储后端配置 / StorageConfig holds storage backend options
type StorageConfig struct {
	// Dir 数据目录，默认 ~/.whiteboard / Dir is the data directory, default ~/.whiteboard
	Dir string `json:"dir"`
	// Backend 后端选择：auto / sqlite / file，默认 auto（先探测 sqlite）
	// Backend selects the backend: auto / sqlite / file, default auto (probe sqlite first)
	Backend string `json:"backend"`
}

// AutoSaveConfig 自动保存配置 / AutoSaveConfig holds auto-save options
type AutoSaveConfig struct {
	// DebounceMS 防抖窗口毫秒数，默认 500 / DebounceMS is the debounce window, default 500
	DebounceMS int `json:"debounce_ms"`
}

// UIConfig 界面配置 / UIConfig holds UI options
type UIConfig struct {
	// Locale 界面语言（en / zh-CN），空值时探测环境
	// Locale is the UI language (en / zh-CN); empty means detect from environment
	Locale string `json:"locale"`
}

type Config struct {
	Storage  StorageConfig  `json:"storage"`
	AutoSave AutoSaveConfig `json:"autosave"`
	UI       UIConfig       `json:"ui"`
}

// Default 返回默认配置 / Default returns the default configuration
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Storage: StorageConfig{
			Dir:     filepath.Join(home, ".whiteboard"),
			Backend: "auto",
		},
		AutoSave: AutoSaveConfig{DebounceMS: 500},
	}
}

// Load 读取配置文件并叠加在默认值上。path 为空时依次尝试
// ./whiteboard.json 和 ~/.whiteboard/config.json；文件不存在不是错误。
// Load reads the config file over the defaults. An empty path tries
// ./whiteboard.json then ~/.whiteboard/config.json; a missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		for _, candidate := range []string{"whiteboard.json", filepath.Join(cfg.Storage.Dir, "config.json")} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage.Dir = strings.TrimSpace(c.Storage.Dir)
	if c.Storage.Dir == "" {
		c.Storage.Dir = Default().Storage.Dir
	}
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = "auto"
	}
	if c.AutoSave.DebounceMS <= 0 {
		c.AutoSave.DebounceMS = 500
	}
}
