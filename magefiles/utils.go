//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type cmdOptions struct {
	args   []string
	tags   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

// withTags passes build tags to a go subcommand.
func withTags(tags ...string) cmdOption {
	return func(o *cmdOptions) {
		o.tags = append(o.tags, tags...)
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

// goArgs places the tags flag right after the go subcommand.
func (o *cmdOptions) goArgs() []string {
	if len(o.tags) == 0 || len(o.args) == 0 {
		return o.args
	}
	args := []string{o.args[0], "-tags", strings.Join(o.tags, ",")}
	return append(args, o.args[1:]...)
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}
	args := opts.goArgs()

	fmt.Printf("Executing: %s %s\n", command, strings.Join(args, " "))
	cmd := exec.Command(command, args...)

	streamOutput := mg.Verbose() || opts.stream

	var b bytes.Buffer
	if streamOutput {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !streamOutput {
			fmt.Println("... failed command output:")
			fmt.Println(b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}
