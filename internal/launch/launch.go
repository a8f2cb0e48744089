package launch

import (
	"os"
	"os/exec"
	"syscall"

	errs "smartfarm-backend/internal/common/errors"
	"smartfarm-backend/internal/common/logger"
)

// Launcher performs the linear launch sequence: install the process manager
// if configured, then replace the current process image with it. Worker
// supervision, request handling and shutdown belong to the launched process,
// not to this package.
type Launcher struct {
	cfg    *Config
	logger logger.Logger

	lookPath func(file string) (string, error)
	execve   func(argv0 string, argv []string, envv []string) error
	runCmd   func(name string, args ...string) error
}

func NewLauncher(cfg *Config, log logger.Logger) *Launcher {
	return &Launcher{
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"manager": cfg.Manager}),
		lookPath: exec.LookPath,
		execve:   syscall.Exec,
		runCmd:   runPassthrough,
	}
}

// InstallDependency runs the configured install command as a side effect of
// launching. A failure aborts the launch; nothing is retried.
func (l *Launcher) InstallDependency() error {
	if len(l.cfg.Install) == 0 {
		return nil
	}

	l.logger.Info("installing process manager", map[string]interface{}{
		"command": l.cfg.Install,
	})

	if err := l.runCmd(l.cfg.Install[0], l.cfg.Install[1:]...); err != nil {
		return errs.Wrap(errs.ErrCodeInstallFailed, "dependency installation failed", err)
	}
	return nil
}

// Run installs the dependency and then execs the process manager with the
// assembled argument list. On success it does not return: the process image
// is replaced, so the launcher's exit code is the launched process's.
func (l *Launcher) Run() error {
	if err := l.InstallDependency(); err != nil {
		return err
	}

	path, err := l.lookPath(l.cfg.Manager)
	if err != nil {
		return errs.Wrap(errs.ErrCodeExecFailed, "process manager not found", err)
	}

	argv := append([]string{l.cfg.Manager}, l.cfg.Args()...)

	l.logger.Info("replacing process image", map[string]interface{}{
		"path": path,
		"argv": argv,
	})

	if err := l.execve(path, argv, os.Environ()); err != nil {
		return errs.Wrap(errs.ErrCodeExecFailed, "exec failed", err)
	}
	return nil
}

func runPassthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
