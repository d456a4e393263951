//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the binary on the Vulkan backend into bin/.
func (Build) Engine() error {
	mg.Deps(Shaders.Check)
	fmt.Println("Build engine...")
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tinted", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the binary on the in-memory backend into bin/.
func (Build) Headless() error {
	mg.Deps(Shaders.Check)
	fmt.Println("Build headless engine...")
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tinted-headless", "."), withTags("headless"), withStream()); err != nil {
		return err
	}
	return nil
}
