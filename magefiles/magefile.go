// Package main provides build targets for the phonebook project using Mage.
//
// Usage:
//
//	mage build          Compile the phonebook binary to bin/
//	mage test           Run all tests with the race detector
//	mage testUnit       Run tests in short mode
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install phonebook to GOPATH/bin
//	mage demo           Build, then seed a scratch directory under bin/demo
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "phonebook"
	binaryDir  = "bin"
	cmdDir     = "./cmd/phonebook"

	demoEntries = "1000"
)

// Build compiles the phonebook binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", binaryPath(), cmdDir)
}

// Test runs every package test with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// TestUnit runs the tests in short mode.
func TestUnit() error {
	return sh.RunV("go", "test", "-short", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}

// Demo builds the binary and seeds a throwaway SQLite directory with
// generated entries. Browse it with:
//
//	bin/phonebook --config-dir bin/demo --data-dir bin/demo browse
func Demo() error {
	mg.Deps(Build)
	dir := filepath.Join(binaryDir, "demo")
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return sh.RunV(binaryPath(), "--config-dir", dir, "--data-dir", dir, "seed", demoEntries)
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}
