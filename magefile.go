//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const BIN_DIR = "bin"

var commands = []string{"stage-client", "stage-token"}

func fmtPanic(format string, val ...any) {
	panic(fmt.Sprintf(format, val...))
}

// Build compiles every command into bin/.
func Build() error {
	if err := os.MkdirAll(BIN_DIR, 0o755); err != nil {
		fmtPanic("Unable create %s. Err: %s", BIN_DIR, err)
	}

	for _, command := range commands {
		out := path.Join(BIN_DIR, command)
		fmt.Printf("[Go] Build %s\n", out)
		if err := sh.RunV("go", "build", "-o", out, "./cmd/"+command); err != nil {
			return err
		}
	}
	return nil
}

// Test runs the unit tests. Capture drivers need cgo, so the race detector
// follows CGO_ENABLED.
func Test() error {
	args := []string{"test", "./..."}
	if os.Getenv("CGO_ENABLED") != "0" {
		args = append(args, "-race")
	}
	return sh.RunV("go", args...)
}

func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint checks formatting and runs the vet analyzers.
func Lint() error {
	mg.Deps(Vet)

	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s", out)
	}
	return nil
}

// Token mints a participant token for the test room.
func Token() error {
	return sh.RunV("go", "run", "./cmd/stage-token", "-topic", "test")
}

func Clean() error {
	return sh.Rm(BIN_DIR)
}
