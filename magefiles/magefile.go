//go:build mage

// Package main provides build targets for the docket project using Mage.
//
// Usage:
//
//	mage build            Compile the docket binary to bin/
//	mage test             Run all tests
//	mage testUnit         Run unit tests (skip the end-to-end packages)
//	mage testIntegration  Run the end-to-end packages (CLI and HTTP backend)
//	mage lint             Run golangci-lint
//	mage clean            Remove build artifacts
//	mage install          Install docket to GOPATH/bin
//	mage stats            Print Go LOC and documentation word counts
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "docket"
	binaryDir  = "bin"
	cmdDir     = "./cmd/docket"
	versionVar = "github.com/mesh-intelligence/docket/internal/cli.Version"
)

// integrationPkgs are exercised end to end: the CLI opens real data
// directories and the remote backend talks to a live HTTP server.
var integrationPkgs = []string{"/internal/cli", "/internal/remote"}

// Build compiles the docket binary to bin/, stamping the version from
// git describe when available.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v",
		"-ldflags", "-X "+versionVar+"="+version(),
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

func version() string {
	if v := os.Getenv("DOCKET_VERSION"); v != "" {
		return v
	}
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestUnit runs the tests of every package except the end-to-end ones.
func TestUnit() error {
	unit, _, err := splitPackages()
	if err != nil {
		return err
	}
	if len(unit) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	return sh.RunV(binGo, append([]string{"test"}, unit...)...)
}

// TestIntegration builds first, then runs the end-to-end packages with
// the race detector.
func TestIntegration() error {
	mg.Deps(Build)
	_, integration, err := splitPackages()
	if err != nil {
		return err
	}
	return sh.RunV(binGo, append([]string{"test", "-race"}, integration...)...)
}

func splitPackages() (unit, integration []string, err error) {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, nil, err
	}
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg == "" || strings.HasSuffix(pkg, "/magefiles") {
			continue
		}
		if isIntegration(pkg) {
			integration = append(integration, pkg)
		} else {
			unit = append(unit, pkg)
		}
	}
	return unit, integration, nil
}

func isIntegration(pkg string) bool {
	for _, suffix := range integrationPkgs {
		if strings.HasSuffix(pkg, suffix) {
			return true
		}
	}
	return false
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
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints Go lines of code and documentation word counts.
func Stats() error {
	var prodLines, testLines int

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	docWords := 0
	for _, path := range []string{"README.md", "DESIGN.md", "SPEC_FULL.md"} {
		n, err := countWordsInFile(path)
		if err != nil {
			continue
		}
		docWords += n
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of code (Go, total):      %d\n", prodLines+testLines)
	fmt.Printf("Words (documentation):          %d\n", docWords)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	count := 0
	inWord := false
	for _, r := range string(data) {
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count, nil
}
