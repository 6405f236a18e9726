package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/espbox/internal/app"
	"github.com/firefly-engineering/espbox/internal/config"
	"github.com/firefly-engineering/espbox/internal/device"
	"github.com/firefly-engineering/espbox/internal/errors"
	"github.com/firefly-engineering/espbox/internal/logging"
	"github.com/firefly-engineering/espbox/internal/orchestrator"
	"github.com/firefly-engineering/espbox/internal/sandbox"
	"github.com/firefly-engineering/espbox/internal/terminal"
	"github.com/firefly-engineering/espbox/internal/tui"
	"github.com/firefly-engineering/espbox/internal/workspace"
)

// Swapped in tests.
var (
	pickDevice      device.Picker = tui.RunPicker
	stdinIsTerminal func() bool   = terminal.IsInteractive
)

// project is the firmware project a command runs against, with command-line
// overrides applied.
type project struct {
	root string
	cfg  *config.ProjectConfig
	orch *orchestrator.Orchestrator
}

// loadProject locates the project root, loads espbox.toml and applies the
// --name and --image overrides.
func loadProject() (*project, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, errors.ConfigError("failed to load project configuration", err)
	}
	if nameFlag != "" {
		if err := config.ValidateSandboxName(nameFlag); err != nil {
			return nil, errors.ValidationError(err.Error())
		}
		cfg.Sandbox.Name = nameFlag
	}
	if imageFlag != "" {
		cfg.Sandbox.Image = imageFlag
	}
	if deviceFlag != "" && !filepath.IsAbs(deviceFlag) {
		return nil, errors.ValidationError(fmt.Sprintf("device must be an absolute path (got %q)", deviceFlag))
	}

	logging.Debug("project", "root", root, "sandbox", cfg.Sandbox.Name, "image", cfg.Sandbox.Image)

	return &project{
		root: root,
		cfg:  cfg,
		orch: app.Default.Orchestrator(orchestrator.Project{Root: root, Config: cfg}),
	}, nil
}

// loadRuntimeProject is loadProject for commands that talk to the
// container runtime.
func loadRuntimeProject() (*project, error) {
	if err := app.Default.RequireRuntime(); err != nil {
		return nil, err
	}
	return loadProject()
}

// projectRoot returns --project, or the nearest ancestor of the current
// directory holding espbox.toml or Cargo.toml.
func projectRoot() (string, error) {
	if projectFlag != "" {
		root, err := filepath.Abs(projectFlag)
		if err != nil {
			return "", errors.ValidationError(fmt.Sprintf("invalid project root %q: %v", projectFlag, err))
		}
		return root, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return workspace.FindRoot(app.Default.FS, cwd), nil
}

// workDir returns the host working directory for a command. Without
// --workdir it is the current directory, unless --project points
// elsewhere, in which case it is the project root.
func (p *project) workDir() (string, error) {
	if workdirFlag != "" {
		return workdirFlag, nil
	}
	if projectFlag != "" {
		return "", nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return cwd, nil
}

// sandbox describes the project's sandbox. Commands talking to the
// device (needDevice) may offer the device picker; others never prompt
// and fall back to the default device when discovery is ambiguous.
func (p *project) sandbox(needDevice bool) (sandbox.Sandbox, error) {
	sb := sandbox.Sandbox{
		Name:  p.cfg.Sandbox.Name,
		Image: p.cfg.Sandbox.Image,
	}

	var err error
	if needDevice {
		// A stale sandbox fails anyway; do not ask for a device first.
		if err := p.orch.CheckStale(sb.Name); err != nil {
			return sb, err
		}
		sb.Device, err = p.orch.ResolveDevice(deviceFlag, stdinIsTerminal(), pickDevice)
		if err != nil {
			return sb, err
		}
	} else {
		sb.Device, err = p.orch.ResolveDevice(deviceFlag, false, nil)
		if err != nil {
			logging.Debug("device discovery ambiguous, using default", "error", err)
			sb.Device = config.DefaultDevice
		}
	}
	return sb, nil
}

// request builds an orchestrator request for the current invocation.
func (p *project) request(args []string, profile string, needDevice bool) (orchestrator.Request, error) {
	if profile != "" {
		if err := config.ValidateProfile(profile); err != nil {
			return orchestrator.Request{}, errors.ValidationError(err.Error())
		}
	}

	sb, err := p.sandbox(needDevice)
	if err != nil {
		return orchestrator.Request{}, err
	}

	dir, err := p.workDir()
	if err != nil {
		return orchestrator.Request{}, err
	}

	return orchestrator.Request{
		Sandbox: sb,
		WorkDir: dir,
		Profile: profile,
		Args:    args,
	}, nil
}

// splitCommand splits a single argument holding a whole command line, so
// `espbox exec "ls -la"` behaves like `espbox exec -- ls -la`.
func splitCommand(args []string) ([]string, error) {
	if len(args) != 1 || !strings.ContainsAny(args[0], " \t") {
		return args, nil
	}
	words, err := shellquote.Split(args[0])
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("cannot parse command %q: %v", args[0], err))
	}
	return words, nil
}
