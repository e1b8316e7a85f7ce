// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the application configuration from a YAML file in
// the config directory, with environment variable overrides under the
// STRIDE_ prefix (e.g. STRIDE_S3_BUCKET).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "STRIDE"

	cfgKeyDataDir      = "data_dir"
	cfgKeyLanguage     = "language"
	cfgKeyS3Endpoint   = "s3.endpoint"
	cfgKeyS3Region     = "s3.region"
	cfgKeyS3Bucket     = "s3.bucket"
	cfgKeyS3AccessKey  = "s3.access_key"
	cfgKeyS3SecretKey  = "s3.secret_key"
	cfgKeyS3PathStyle  = "s3.path_style"
	cfgKeyS3ListingCap = "s3.listing_cap"
)

// defaultConfigYAML is written on first run so the file is there to edit.
const defaultConfigYAML = `# stride configuration

# Directory for application-private data (preferences, key-value store).
# data_dir:

# Display language.
language: en

# Remote backend (S3-compatible). Leave unset to use local backends only.
s3:
  # endpoint:
  region: us-east-1
  # bucket:
  # access_key:
  # secret_key:
  path_style: false
  listing_cap: 200
`

// S3 holds the remote backend connection settings.
type S3 struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PathStyle  bool
	ListingCap int
}

// Configured reports whether enough is set to build a remote client.
func (s S3) Configured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Config is the resolved application configuration.
type Config struct {
	DataDir  string
	Language string
	S3       S3
}

// DefaultConfigDir resolves the per-user config directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "stride"), nil
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. A missing file is not an error; environment
// variables still apply.
func Load(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDataDir, filepath.Join(configDir, "data"))
	v.SetDefault(cfgKeyLanguage, "en")
	v.SetDefault(cfgKeyS3Region, "us-east-1")
	v.SetDefault(cfgKeyS3ListingCap, 200)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		DataDir:  v.GetString(cfgKeyDataDir),
		Language: v.GetString(cfgKeyLanguage),
		S3: S3{
			Endpoint:   v.GetString(cfgKeyS3Endpoint),
			Region:     v.GetString(cfgKeyS3Region),
			Bucket:     v.GetString(cfgKeyS3Bucket),
			AccessKey:  v.GetString(cfgKeyS3AccessKey),
			SecretKey:  v.GetString(cfgKeyS3SecretKey),
			PathStyle:  v.GetBool(cfgKeyS3PathStyle),
			ListingCap: v.GetInt(cfgKeyS3ListingCap),
		},
	}, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
