// Copyright 2025 The Mdref Authors
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

package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// config is the project configuration loaded from mdref.yaml.
//
// The file is optional; a missing file behaves like an empty one.
type config struct {
	// MinVersion gates the config on a minimum mdref version, "0.2.0" style.
	MinVersion string `yaml:"min_version"`
	// Ignore lists gitignore-syntax patterns of files never checked.
	Ignore []string `yaml:"ignore"`
	// Checks restricts which checks run.
	Checks struct {
		Allow []string `yaml:"allow"`
		Deny  []string `yaml:"deny"`
	} `yaml:"checks"`
	// Vars declares the variables custom checks may read, with their default
	// values. Variables passed on the command line must be declared here when
	// this map is non-empty.
	Vars map[string]string `yaml:"vars"`
}

func loadConfig(root, name string) (*config, error) {
	if name == "" {
		name = DefaultConfig
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	cfg := &config{}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	// Unknown fields are a config typo, not forward compatibility; refuse
	// them so min_version keeps its meaning.
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := checkMinVersion(cfg.MinVersion); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}
