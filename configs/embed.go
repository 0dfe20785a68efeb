// Package configs provides embedded configuration templates for subseek.
//
// Templates are embedded at build time with //go:embed so they ship in
// every distribution, whether installed from source or as a release
// binary.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (internal/config NewConfig)
//  2. User config (~/.config/subseek/config.yaml)
//  3. Project config (.subseek.yaml)
//  4. Environment variables (SUBSEEK_*)
package configs

import _ "embed"

// ProjectConfigTemplate is the template for project-level configuration.
// Created by `subseek init` as .subseek.yaml in the working directory.
// Holds per-corpus settings: backend choice, storage paths, search tuning.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by `subseek init --user` at ~/.config/subseek/config.yaml.
// Holds machine-specific settings: Elasticsearch addresses and
// credentials, cache sizing, server address.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
