package session

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener reveals a file in the platform file manager.
type Opener func(ctx context.Context, path string) error

// SystemOpener reveals path with the file manager of the running platform.
// The file manager outlives ctx; only its start is reported.
func SystemOpener(_ context.Context, path string) error {
	name, args := revealCommand(runtime.GOOS, path)
	_, err := launch(exec.Command(name, args...))
	return err
}

// launch starts cmd without waiting for it. The returned channel is closed
// once the process has exited and been reaped.
func launch(cmd *exec.Cmd) (<-chan struct{}, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cmd.Wait() // exit status of the file manager is not reported
	}()
	return done, nil
}

// revealCommand returns the command that shows path in the file manager of goos.
func revealCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{"/select," + filepath.FromSlash(path)}
	case "darwin":
		return "open", []string{"-R", path}
	default:
		return "xdg-open", []string{filepath.Dir(path)}
	}
}
