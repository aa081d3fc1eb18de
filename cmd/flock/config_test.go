package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/janreitz/garden/flocking"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flock.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		cfg, err := loadConfig("")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cfg, test.ShouldResemble, flocking.DefaultConfig())
	})

	t.Run("partial file overrides defaults", func(t *testing.T) {
		cfg, err := loadConfig(writeConfig(t, `{"vision_radius": 3, "cohesion_gain": "0.5"}`))
		test.That(t, err, test.ShouldBeNil)
		expected := flocking.DefaultConfig()
		expected.VisionRadius = 3
		expected.CohesionGain = 0.5
		test.That(t, cfg, test.ShouldResemble, expected)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, `{"vision_radios": 3}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "vision_radios")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, `{"separation_gain": -1}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "separation_gain")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, `{"vision_radius": `))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.json"))
		test.That(t, err, test.ShouldNotBeNil)
	})
}
