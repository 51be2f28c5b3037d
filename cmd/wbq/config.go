package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration file for wbq.
type fileConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Lang      string `yaml:"lang"`
	PerPage   int    `yaml:"per_page"`
	Database  int    `yaml:"database"`
	MaxURLLen int    `yaml:"max_url_len"`
	Proxy     string `yaml:"proxy"`
	UserAgent string `yaml:"user_agent"`
	RedisAddr string `yaml:"redis_addr"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
