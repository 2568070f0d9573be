package entities

import (
	"slices"

	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// ProfileSpec is the fully resolved description of one development instance.
// After merging, Version and PythonVersion are always set. A ProfileSpec is
// built per invocation and never persisted by a launch.
type ProfileSpec struct {
	Name          string
	Version       values.ProductVersion
	PythonVersion values.PythonVersion
	Enterprise    bool
	// Modules to install on first start, in order. Empty means the product defaults.
	Modules []string
	// Paths are absolute addon directories supplied by the project, in order.
	Paths  []string
	Launch LaunchOptions
}

// LaunchOptions holds the server parameters that do not influence which shared
// resources a profile needs.
type LaunchOptions struct {
	DB             string
	ExtraParams    string
	HTTPInterface  string
	DBHost         string
	DBUser         string
	DBPassword     string
	Load           []string
	Workers        int
	MaxCronThreads int
	LimitTimeCPU   int
	LimitTimeReal  int
	// ForceInstall is nil unless a layer set it; nil installs the modules.
	ForceInstall *bool
	ForceUpdate  bool
}

// InstallsModules reports whether the requested modules are passed to -i.
func (l LaunchOptions) InstallsModules() bool {
	return l.ForceInstall == nil || *l.ForceInstall
}

// ProfileOverrides is one configuration layer. A nil pointer (or nil slice)
// means the layer leaves the field to lower layers; a non-nil empty slice
// explicitly clears it.
type ProfileOverrides struct {
	Version        *values.ProductVersion
	PythonVersion  *values.PythonVersion
	Enterprise     *bool
	DB             *string
	ExtraParams    *string
	HTTPInterface  *string
	DBHost         *string
	DBUser         *string
	DBPassword     *string
	Workers        *int
	MaxCronThreads *int
	LimitTimeCPU   *int
	LimitTimeReal  *int
	ForceInstall   *bool
	ForceUpdate    *bool
	Modules        []string
	Paths          []string
	Load           []string
}

// IsEmpty reports whether the layer sets nothing.
func (o ProfileOverrides) IsEmpty() bool {
	return o.Version == nil && o.PythonVersion == nil && o.Enterprise == nil &&
		o.DB == nil && o.ExtraParams == nil && o.HTTPInterface == nil &&
		o.DBHost == nil && o.DBUser == nil && o.DBPassword == nil &&
		o.Workers == nil && o.MaxCronThreads == nil && o.LimitTimeCPU == nil &&
		o.LimitTimeReal == nil && o.ForceInstall == nil && o.ForceUpdate == nil &&
		o.Modules == nil && o.Paths == nil && o.Load == nil
}

// Overlay returns a new layer where every field set in top replaces the
// receiver's value. Neither input is mutated.
func (o ProfileOverrides) Overlay(top ProfileOverrides) ProfileOverrides {
	out := o.clone()

	overlayPtr(&out.Version, top.Version)
	overlayPtr(&out.PythonVersion, top.PythonVersion)
	overlayPtr(&out.Enterprise, top.Enterprise)
	overlayPtr(&out.DB, top.DB)
	overlayPtr(&out.ExtraParams, top.ExtraParams)
	overlayPtr(&out.HTTPInterface, top.HTTPInterface)
	overlayPtr(&out.DBHost, top.DBHost)
	overlayPtr(&out.DBUser, top.DBUser)
	overlayPtr(&out.DBPassword, top.DBPassword)
	overlayPtr(&out.Workers, top.Workers)
	overlayPtr(&out.MaxCronThreads, top.MaxCronThreads)
	overlayPtr(&out.LimitTimeCPU, top.LimitTimeCPU)
	overlayPtr(&out.LimitTimeReal, top.LimitTimeReal)
	overlayPtr(&out.ForceInstall, top.ForceInstall)
	overlayPtr(&out.ForceUpdate, top.ForceUpdate)

	if top.Modules != nil {
		out.Modules = slices.Clone(top.Modules)
	}
	if top.Paths != nil {
		out.Paths = slices.Clone(top.Paths)
	}
	if top.Load != nil {
		out.Load = slices.Clone(top.Load)
	}

	return out
}

func (o ProfileOverrides) clone() ProfileOverrides {
	out := o
	out.Version = clonePtr(o.Version)
	out.PythonVersion = clonePtr(o.PythonVersion)
	out.Enterprise = clonePtr(o.Enterprise)
	out.DB = clonePtr(o.DB)
	out.ExtraParams = clonePtr(o.ExtraParams)
	out.HTTPInterface = clonePtr(o.HTTPInterface)
	out.DBHost = clonePtr(o.DBHost)
	out.DBUser = clonePtr(o.DBUser)
	out.DBPassword = clonePtr(o.DBPassword)
	out.Workers = clonePtr(o.Workers)
	out.MaxCronThreads = clonePtr(o.MaxCronThreads)
	out.LimitTimeCPU = clonePtr(o.LimitTimeCPU)
	out.LimitTimeReal = clonePtr(o.LimitTimeReal)
	out.ForceInstall = clonePtr(o.ForceInstall)
	out.ForceUpdate = clonePtr(o.ForceUpdate)
	if o.Modules != nil {
		out.Modules = slices.Clone(o.Modules)
	}
	if o.Paths != nil {
		out.Paths = slices.Clone(o.Paths)
	}
	if o.Load != nil {
		out.Load = slices.Clone(o.Load)
	}
	return out
}

func overlayPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. Handy when building override layers by hand.
func Ptr[T any](v T) *T {
	return &v
}
