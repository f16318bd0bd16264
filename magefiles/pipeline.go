//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Catalog builds the binary and fetches the form catalog from the VA API.
func Catalog() error {
	mg.Deps(Build)
	return runCLI("catalog", "fetch")
}

// Process builds the binary and runs the full pipeline over the catalog.
func Process() error {
	mg.Deps(Build, Init)
	return runCLI("process")
}

func runCLI(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}
