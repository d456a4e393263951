//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests. GPU paths run against the headless backend.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests built against the headless engine backend.
func (Test) Headless() error {
	if _, err := executeCmd("go", withArgs("test", "-count=1", "./..."), withTags("headless"), withStream()); err != nil {
		return err
	}
	return nil
}
