// Package services contains domain services for the rodoo domain model.
package services

import (
	"slices"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// ProfileLayer is one configuration layer together with its origin.
type ProfileLayer struct {
	Source    entities.ValueSource
	Overrides entities.ProfileOverrides
}

// ProfileMerger folds configuration layers onto built-in defaults.
//
// Merge Semantics:
//   - Layers are applied left-to-right; later layers win field by field
//   - A field left unset by every layer keeps its default
//   - Slices are replaced, never concatenated
//   - The name is not merged; callers assign it
//
// The result is a NEW spec; inputs are not mutated.
type ProfileMerger struct{}

// NewProfileMerger creates a new profile merger service.
func NewProfileMerger() *ProfileMerger {
	return &ProfileMerger{}
}

// Merge applies layers over defaults and records which layer supplied each
// field.
func (m *ProfileMerger) Merge(
	defaults entities.ProfileSpec,
	layers ...ProfileLayer,
) (entities.ProfileSpec, entities.Provenance) {
	spec := copySpec(defaults)
	prov := entities.Provenance{}

	for _, layer := range layers {
		o := layer.Overrides
		src := layer.Source

		apply(&spec.Version, o.Version, "version", src, prov)
		apply(&spec.PythonVersion, o.PythonVersion, "python_version", src, prov)
		apply(&spec.Enterprise, o.Enterprise, "enterprise", src, prov)
		applySlice(&spec.Modules, o.Modules, "modules", src, prov)
		applySlice(&spec.Paths, o.Paths, "paths", src, prov)

		l := &spec.Launch
		apply(&l.DB, o.DB, "db", src, prov)
		apply(&l.ExtraParams, o.ExtraParams, "extra_params", src, prov)
		apply(&l.HTTPInterface, o.HTTPInterface, "http_interface", src, prov)
		apply(&l.DBHost, o.DBHost, "db_host", src, prov)
		apply(&l.DBUser, o.DBUser, "db_user", src, prov)
		apply(&l.DBPassword, o.DBPassword, "db_password", src, prov)
		apply(&l.Workers, o.Workers, "workers", src, prov)
		apply(&l.MaxCronThreads, o.MaxCronThreads, "max_cron_threads", src, prov)
		apply(&l.LimitTimeCPU, o.LimitTimeCPU, "limit_time_cpu", src, prov)
		apply(&l.LimitTimeReal, o.LimitTimeReal, "limit_time_real", src, prov)
		applyOptional(&l.ForceInstall, o.ForceInstall, "force_install", src, prov)
		apply(&l.ForceUpdate, o.ForceUpdate, "force_update", src, prov)
		applySlice(&l.Load, o.Load, "load", src, prov)
	}

	return spec, prov
}

func apply[T any](dst *T, v *T, field string, src entities.ValueSource, prov entities.Provenance) {
	if v == nil {
		return
	}
	*dst = *v
	prov[field] = src
}

func applyOptional[T any](dst **T, v *T, field string, src entities.ValueSource, prov entities.Provenance) {
	if v == nil {
		return
	}
	c := *v
	*dst = &c
	prov[field] = src
}

func applySlice(dst *[]string, v []string, field string, src entities.ValueSource, prov entities.Provenance) {
	if v == nil {
		return
	}
	*dst = dedupe(v)
	prov[field] = src
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func copySpec(s entities.ProfileSpec) entities.ProfileSpec {
	out := s
	out.Modules = slices.Clone(s.Modules)
	out.Paths = slices.Clone(s.Paths)
	out.Launch.Load = slices.Clone(s.Launch.Load)
	if s.Launch.ForceInstall != nil {
		v := *s.Launch.ForceInstall
		out.Launch.ForceInstall = &v
	}
	return out
}
