package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
)

// LaunchService orchestrates the complete start workflow: resolve the
// profile, provision shared resources, plan the invocation and launch.
type LaunchService struct {
	resolver    *ProfileResolver
	provisioner *Provisioner
	planner     *services.LaunchPlanner
	inspector   ports.AddonInspector
	launcher    ports.ProcessLauncher
	logger      *slog.Logger
}

// NewLaunchService creates a new launch service.
func NewLaunchService(
	resolver *ProfileResolver,
	provisioner *Provisioner,
	planner *services.LaunchPlanner,
	inspector ports.AddonInspector,
	launcher ports.ProcessLauncher,
	logger *slog.Logger,
) *LaunchService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LaunchService{
		resolver:    resolver,
		provisioner: provisioner,
		planner:     planner,
		inspector:   inspector,
		launcher:    launcher,
		logger:      logger,
	}
}

// Prepare resolves, provisions and plans without launching.
func (s *LaunchService) Prepare(ctx context.Context, req dto.LaunchRequest) (*dto.LaunchResponse, error) {
	resolved, err := s.resolver.Resolve(ctx, req.Profile)
	if err != nil {
		return nil, err
	}
	spec := resolved.Spec

	if req.Mode.RequiresModules() && len(spec.Modules) == 0 {
		return nil, apperrors.NewConfigurationError("modules",
			fmt.Sprintf("%s needs at least one module", req.Mode), nil).
			WithHint("pass --module or set modules in the profile")
	}

	resources, err := s.provisioner.Provision(ctx, spec)
	if err != nil {
		return nil, err
	}

	plan, err := s.planner.Plan(req.Mode, spec, resources.Trees, resources.Environment)
	if err != nil {
		return nil, apperrors.NewConfigurationError("launch", "cannot assemble the command line", err)
	}

	if missing := s.inspector.MissingModules(spec.Modules, plan.AddonsPath); len(missing) > 0 {
		return nil, apperrors.NewConfigurationError("modules",
			"modules not found in the addons path: "+strings.Join(missing, ", "), nil).
			WithHint("check the module names and the profile's paths")
	}

	return &dto.LaunchResponse{Profile: *resolved, Plan: plan}, nil
}

// Launch prepares the invocation and runs it in the foreground until the
// process exits.
func (s *LaunchService) Launch(ctx context.Context, req dto.LaunchRequest) (*dto.LaunchResponse, error) {
	resp, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("launching",
		"profile", resp.Profile.Spec.Name,
		"mode", resp.Plan.Mode,
		"database", resp.Plan.Database,
		"environment", resp.Plan.Environment.Path)

	if err := s.launcher.Launch(ctx, resp.Plan); err != nil {
		return resp, err
	}
	return resp, nil
}
