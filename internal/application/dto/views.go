package dto

import (
	"strings"
	"time"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// FieldView is one resolved profile field and the layer that supplied it.
type FieldView struct {
	Value  any    `json:"value" yaml:"value"`
	Key    string `json:"key" yaml:"key"`
	Source string `json:"source" yaml:"source"`
}

// ProfileView is the printable form of a resolved profile.
type ProfileView struct {
	Name   string      `json:"name" yaml:"name"`
	File   string      `json:"file,omitempty" yaml:"file,omitempty"`
	Key    string      `json:"key" yaml:"key"`
	Fields []FieldView `json:"fields" yaml:"fields"`
}

const maskedPassword = "********"

// NewProfileView flattens a resolved profile in profile-file field order.
// The database password is masked.
func NewProfileView(p ResolvedProfile, key entities.ResourceKey) ProfileView {
	s := p.Spec
	l := s.Launch

	password := l.DBPassword
	if password != "" {
		password = maskedPassword
	}

	field := func(k string, v any) FieldView {
		return FieldView{Key: k, Value: v, Source: string(p.Provenance.Of(k))}
	}

	return ProfileView{
		Name: s.Name,
		File: p.Source,
		Key:  key.String(),
		Fields: []FieldView{
			field("version", s.Version.String()),
			field("python_version", s.PythonVersion.String()),
			field("enterprise", s.Enterprise),
			field("modules", s.Modules),
			field("paths", s.Paths),
			field("db", l.DB),
			field("db_host", l.DBHost),
			field("db_user", l.DBUser),
			field("db_password", password),
			field("http_interface", l.HTTPInterface),
			field("workers", l.Workers),
			field("max_cron_threads", l.MaxCronThreads),
			field("limit_time_cpu", l.LimitTimeCPU),
			field("limit_time_real", l.LimitTimeReal),
			field("load", l.Load),
			field("force_install", l.InstallsModules()),
			field("force_update", l.ForceUpdate),
			field("extra_params", l.ExtraParams),
		},
	}
}

// CacheEntryView is the printable form of a cache entry.
type CacheEntryView struct {
	ModTime  time.Time `json:"modified" yaml:"modified"`
	Kind     string    `json:"kind" yaml:"kind"`
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	Complete bool      `json:"complete" yaml:"complete"`
}

// NewCacheEntryViews converts cache entries for printing.
func NewCacheEntryViews(entries []entities.CacheEntry) []CacheEntryView {
	out := make([]CacheEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, CacheEntryView{
			Kind:     string(e.Kind),
			Name:     e.Name,
			Path:     e.Path,
			Complete: e.Complete,
			ModTime:  e.ModTime,
		})
	}
	return out
}

// Summary renders a short "key=value" line for logs.
func (v ProfileView) Summary() string {
	parts := make([]string, 0, 3)
	for _, f := range v.Fields {
		switch f.Key {
		case "version", "python_version", "enterprise":
			parts = append(parts, f.Key+"="+toString(f.Value))
		}
	}
	return v.Name + " (" + strings.Join(parts, " ") + ")"
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
