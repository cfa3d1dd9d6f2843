package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
	"github.com/lueurxax/catwalk/internal/evaluation"
	"github.com/lueurxax/catwalk/internal/predictions"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Manifest lists the units scored by the batch command.
type Manifest struct {
	Units []Unit `yaml:"units" validate:"required,min=1,dive"`
}

// Unit is one prediction file and the key its evaluations are stored under.
type Unit struct {
	ModelID   int64  `yaml:"model_id"`
	Input     string `yaml:"input" validate:"required"`
	Start     string `yaml:"start" validate:"required"`
	End       string `yaml:"end" validate:"required"`
	Frequency string `yaml:"frequency" validate:"required"`
	Matrix    string `yaml:"matrix"`
}

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: parse manifest: %w", apperrors.ErrInvalidConfig, err)
	}

	if err := validate.Struct(m); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest: %w", apperrors.ErrInvalidConfig, err)
	}

	for i, u := range m.Units {
		if _, err := domain.ParseMatrixKind(u.Matrix); err != nil {
			return Manifest{}, fmt.Errorf("%w: manifest unit %d: %w", apperrors.ErrInvalidConfig, i, err)
		}
	}

	return m, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	return ParseManifest(data)
}

// Requests loads every unit's predictions. Relative inputs resolve against baseDir.
func (m Manifest) Requests(baseDir string) ([]evaluation.Request, error) {
	requests := make([]evaluation.Request, 0, len(m.Units))

	for i, u := range m.Units {
		req, err := u.request(baseDir)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", i, err)
		}

		requests = append(requests, req)
	}

	return requests, nil
}

func (u Unit) request(baseDir string) (evaluation.Request, error) {
	start, err := parseTime(u.Start)
	if err != nil {
		return evaluation.Request{}, err
	}

	end, err := parseTime(u.End)
	if err != nil {
		return evaluation.Request{}, err
	}

	matrix, err := domain.ParseMatrixKind(u.Matrix)
	if err != nil {
		return evaluation.Request{}, err
	}

	path := u.Input
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	set, err := predictions.LoadFile(path)
	if err != nil {
		return evaluation.Request{}, err
	}

	return evaluation.Request{
		Scores:            set.Scores,
		Labels:            set.Labels,
		ModelID:           u.ModelID,
		Start:             start,
		End:               end,
		AsOfDateFrequency: u.Frequency,
		Matrix:            matrix,
	}, nil
}
