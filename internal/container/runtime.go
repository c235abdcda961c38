// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a local container runtime (docker or podman)
// and runs images with piped stdin/stdout. The document extractor uses it
// to shell binary documents through a pandoc image.
package container

import (
	"fmt"
	"io"
	"os/exec"
)

// Runtime provides container operations: checking availability, verifying
// images, and running containers with piped I/O.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	ImageExists(image string) error

	// Run executes a container with the given image and command arguments,
	// piping stdin and stdout.
	Run(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// binaryRuntime implements Runtime for one container binary. Docker and
// podman differ only in the binary name and the image-existence subcommand.
type binaryRuntime struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (r *binaryRuntime) Name() string { return r.bin }

func (r *binaryRuntime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *binaryRuntime) ImageExists(image string) error {
	args := append(append([]string{}, r.imageCheck...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *binaryRuntime) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	runArgs := append([]string{"run", "--rm", "-i", image}, args...)
	if err := r.exec.RunPiped(r.bin, runArgs, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

var defaultExec executor = osExecutor{}

// Detect tries docker first, then podman. It returns an error when neither
// runtime is available.
func Detect() (Runtime, error) {
	candidates := []*binaryRuntime{
		{bin: "docker", imageCheck: []string{"image", "inspect"}, exec: defaultExec},
		{bin: "podman", imageCheck: []string{"image", "exists"}, exec: defaultExec},
	}

	for _, rt := range candidates {
		if rt.Available() {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: install docker or podman")
}
