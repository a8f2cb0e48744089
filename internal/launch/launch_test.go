package launch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfarm-backend/internal/common/config"
	"smartfarm-backend/internal/common/logger"
)

type execCall struct {
	argv0 string
	argv  []string
}

func newTestLauncher(t *testing.T, lc config.LaunchConfig) (*Launcher, *execCall, *[][]string) {
	cfg, err := New(lc, envWith(map[string]string{"PORT": "8080"}))
	require.NoError(t, err)

	l := NewLauncher(cfg, logger.NewTestLogger(t))

	call := &execCall{}
	installs := &[][]string{}

	l.lookPath = func(file string) (string, error) {
		return "/usr/local/bin/" + file, nil
	}
	l.execve = func(argv0 string, argv []string, envv []string) error {
		call.argv0 = argv0
		call.argv = argv
		return nil
	}
	l.runCmd = func(name string, args ...string) error {
		*installs = append(*installs, append([]string{name}, args...))
		return nil
	}

	return l, call, installs
}

func TestLauncher_Run_ExecsAssembledArgv(t *testing.T) {
	l, call, installs := newTestLauncher(t, testLaunchConfig())

	require.NoError(t, l.Run())

	assert.Empty(t, *installs, "no install command configured")
	assert.Equal(t, "/usr/local/bin/procman", call.argv0)
	assert.Equal(t, []string{
		"procman",
		"smartfarm-server",
		"--workers", "4",
		"--worker-class", "async",
		"--bind", "0.0.0.0:8080",
	}, call.argv)
}

func TestLauncher_Run_InstallsBeforeExec(t *testing.T) {
	lc := testLaunchConfig()
	lc.Install = []string{"apt-get", "install", "-y", "procman"}
	l, call, installs := newTestLauncher(t, lc)

	require.NoError(t, l.Run())

	require.Len(t, *installs, 1)
	assert.Equal(t, []string{"apt-get", "install", "-y", "procman"}, (*installs)[0])
	assert.NotEmpty(t, call.argv0, "exec happens after the install")
}

func TestLauncher_Run_InstallFailureAborts(t *testing.T) {
	lc := testLaunchConfig()
	lc.Install = []string{"apt-get", "install", "-y", "procman"}
	l, call, _ := newTestLauncher(t, lc)

	l.runCmd = func(name string, args ...string) error {
		return errors.New("network unreachable")
	}

	err := l.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSTALL_FAILED")
	assert.Empty(t, call.argv0, "install failure must prevent the exec")
}

func TestLauncher_Run_ManagerNotFound(t *testing.T) {
	l, call, _ := newTestLauncher(t, testLaunchConfig())

	l.lookPath = func(file string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}

	err := l.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXEC_FAILED")
	assert.Empty(t, call.argv0)
}

func TestLauncher_Run_ExecErrorPropagates(t *testing.T) {
	l, _, _ := newTestLauncher(t, testLaunchConfig())

	l.execve = func(argv0 string, argv []string, envv []string) error {
		return errors.New("permission denied")
	}

	err := l.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXEC_FAILED")
}
