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

// Package sarif models the subset of SARIF 2.1.0 that mdref emits.
//
// https://docs.oasis-open.org/sarif/sarif/v2.1.0/os/sarif-v2.1.0-os.html
package sarif

// Version is the schema version emitted in every document.
const Version = "2.1.0"

// Severity levels defined by the specification.
const (
	Note    = "note"
	Warning = "warning"
	Error   = "error"
)

type Document struct {
	Version string `json:"version"`
	Runs    []*Run `json:"runs"`
}

type Run struct {
	Tool    *Tool     `json:"tool,omitempty"`
	Results []*Result `json:"results,omitempty"`
}

type Tool struct {
	Driver *ToolComponent `json:"driver,omitempty"`
}

type ToolComponent struct {
	Name string `json:"name,omitempty"`
}

type Result struct {
	Level     string      `json:"level,omitempty"`
	Message   *Message    `json:"message,omitempty"`
	Locations []*Location `json:"locations,omitempty"`
	Fixes     []*Fix      `json:"fixes,omitempty"`
}

type Message struct {
	Text string `json:"text,omitempty"`
}

type Location struct {
	PhysicalLocation *PhysicalLocation `json:"physicalLocation,omitempty"`
}

type PhysicalLocation struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *Region           `json:"region,omitempty"`
}

type ArtifactLocation struct {
	URI string `json:"uri,omitempty"`
}

type Region struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

type Fix struct {
	ArtifactChanges []*ArtifactChange `json:"artifactChanges,omitempty"`
}

type ArtifactChange struct {
	ArtifactLocation *ArtifactLocation `json:"artifactLocation,omitempty"`
	Replacements     []*Replacement    `json:"replacements,omitempty"`
}

type Replacement struct {
	DeletedRegion   *Region          `json:"deletedRegion,omitempty"`
	InsertedContent *ArtifactContent `json:"insertedContent,omitempty"`
}

type ArtifactContent struct {
	Text string `json:"text,omitempty"`
}
