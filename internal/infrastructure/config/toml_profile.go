package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// tomlVersion accepts both `version = 17.0` and `version = "17.0"`.
type tomlVersion string

// rawProfile is one [profile.<name>] table as written by users.
type rawProfile struct {
	Version        *tomlVersion `toml:"version"`
	PythonVersion  *string      `toml:"python_version"`
	Enterprise     *bool        `toml:"enterprise"`
	DB             *string      `toml:"db"`
	ExtraParams    *string      `toml:"extra_params"`
	HTTPInterface  *string      `toml:"http_interface"`
	DBHost         *string      `toml:"db_host"`
	DBUser         *string      `toml:"db_user"`
	DBPassword     *string      `toml:"db_password"`
	Workers        *int         `toml:"workers"`
	MaxCronThreads *int         `toml:"max_cron_threads"`
	LimitTimeCPU   *int         `toml:"limit_time_cpu"`
	LimitTimeReal  *int         `toml:"limit_time_real"`
	ForceInstall   *bool        `toml:"force_install"`
	ForceUpdate    *bool        `toml:"force_update"`
	Modules        []string     `toml:"modules"`
	Paths          []string     `toml:"paths"`
	Load           []string     `toml:"load"`
}

// versionHook turns TOML numbers into version strings. Integers become
// "N.0"; floats keep their shortest representation.
func versionHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(tomlVersion("")) {
		return data, nil
	}
	switch v := data.(type) {
	case float64:
		return tomlVersion(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int64:
		return tomlVersion(strconv.FormatInt(v, 10)), nil
	case string:
		return tomlVersion(v), nil
	default:
		return data, nil
	}
}

// decodeProfile maps an untyped table onto rawProfile. Unknown keys are errors.
func decodeProfile(table map[string]any) (*rawProfile, error) {
	var raw rawProfile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  versionHook,
		ErrorUnused: true,
		TagName:     "toml",
		Result:      &raw,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(table); err != nil {
		return nil, err
	}
	return &raw, nil
}

// toOverrides validates raw values and resolves relative paths against dir.
func (r *rawProfile) toOverrides(dir string) (entities.ProfileOverrides, error) {
	o := entities.ProfileOverrides{
		Enterprise:     r.Enterprise,
		DB:             r.DB,
		ExtraParams:    r.ExtraParams,
		HTTPInterface:  r.HTTPInterface,
		DBHost:         r.DBHost,
		DBUser:         r.DBUser,
		DBPassword:     r.DBPassword,
		Workers:        r.Workers,
		MaxCronThreads: r.MaxCronThreads,
		LimitTimeCPU:   r.LimitTimeCPU,
		LimitTimeReal:  r.LimitTimeReal,
		ForceInstall:   r.ForceInstall,
		ForceUpdate:    r.ForceUpdate,
		Modules:        trimAll(r.Modules),
		Load:           trimAll(r.Load),
	}

	if r.Version != nil {
		v, err := values.NewProductVersion(string(*r.Version))
		if err != nil {
			return o, fmt.Errorf("version: %w", err)
		}
		o.Version = &v
	}
	if r.PythonVersion != nil {
		py, err := values.NewPythonVersion(*r.PythonVersion)
		if err != nil {
			return o, fmt.Errorf("python_version: %w", err)
		}
		o.PythonVersion = &py
	}

	if r.Paths != nil {
		paths := make([]string, 0, len(r.Paths))
		for _, p := range r.Paths {
			resolved, err := ResolvePath(dir, p)
			if err != nil {
				return o, fmt.Errorf("paths: %w", err)
			}
			paths = append(paths, resolved)
		}
		o.Paths = paths
	}

	return o, nil
}

// encodeProfile renders overrides as a TOML table. Paths below dir are
// written relative to it so the file stays portable.
func encodeProfile(o entities.ProfileOverrides, dir string) map[string]any {
	table := map[string]any{}
	if o.Version != nil {
		table["version"] = o.Version.String()
	}
	if o.PythonVersion != nil {
		table["python_version"] = o.PythonVersion.String()
	}
	putPtr(table, "enterprise", o.Enterprise)
	putPtr(table, "db", o.DB)
	putPtr(table, "extra_params", o.ExtraParams)
	putPtr(table, "http_interface", o.HTTPInterface)
	putPtr(table, "db_host", o.DBHost)
	putPtr(table, "db_user", o.DBUser)
	putPtr(table, "db_password", o.DBPassword)
	putPtr(table, "workers", o.Workers)
	putPtr(table, "max_cron_threads", o.MaxCronThreads)
	putPtr(table, "limit_time_cpu", o.LimitTimeCPU)
	putPtr(table, "limit_time_real", o.LimitTimeReal)
	putPtr(table, "force_install", o.ForceInstall)
	putPtr(table, "force_update", o.ForceUpdate)
	if o.Modules != nil {
		table["modules"] = o.Modules
	}
	if o.Load != nil {
		table["load"] = o.Load
	}
	if o.Paths != nil {
		paths := make([]string, 0, len(o.Paths))
		for _, p := range o.Paths {
			paths = append(paths, relativize(dir, p))
		}
		table["paths"] = paths
	}
	return table
}

func putPtr[T any](table map[string]any, key string, v *T) {
	if v != nil {
		table[key] = *v
	}
}

// ResolvePath expands "~" and makes p absolute relative to dir.
func ResolvePath(dir, p string) (string, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(p))
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", p, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(dir, expanded)
	}
	return filepath.Clean(expanded), nil
}

func relativize(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return "./" + filepath.ToSlash(rel)
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
