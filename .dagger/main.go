// Novostroy CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/novostroy/internal/dagger"
)

// Novostroy is the main module for the Novostroy CI/CD pipeline
type Novostroy struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Novostroy CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Novostroy {
	return &Novostroy{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// It is the shared foundation for tests, builds, and linting.
func (n *Novostroy) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("GOEXPERIMENT", "jsonv2").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", n.Source)
}

// TestLibSQL runs the libSQL driver tests, which are only compiled with the
// "libsql" build tag.
func (n *Novostroy) TestLibSQL(ctx context.Context) (string, error) {
	return n.goContainer().
		WithExec([]string{"go", "test", "-v", "-tags", "libsql", "./pkg/storage/libsql/..."}).
		Stdout(ctx)
}

// Test runs the novostroy unit tests via "go test"
func (n *Novostroy) Test(ctx context.Context) (string, error) {
	return n.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
