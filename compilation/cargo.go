package compilation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/stylus-replay/logging"
	"github.com/crytic/stylus-replay/logging/colors"
	"github.com/crytic/stylus-replay/utils"
	"github.com/pkg/errors"
)

const (
	// DefaultTarget is the rustc target Stylus programs are built for.
	DefaultTarget = "wasm32-unknown-unknown"

	// MinimumCargoVersion is the oldest cargo release known to build Stylus programs for DefaultTarget.
	MinimumCargoVersion = "1.71.0"

	// WasmExtension is the extension of the artifact cargo produces for DefaultTarget.
	WasmExtension = ".wasm"
)

// cargoVersionRegex extracts the release number from `cargo --version` output.
var cargoVersionRegex = regexp.MustCompile(`\d+\.\d+\.\d+`)

// BuildConfig describes how a Stylus project is built into a wasm program for replay.
type BuildConfig struct {
	// ProjectPath is the directory holding the project's Cargo.toml.
	ProjectPath string `json:"path"`

	// Package selects one package of a cargo workspace. Empty builds the project's default package.
	Package string `json:"package"`

	// Features lists cargo features to enable.
	Features []string `json:"features"`

	// StableToolchain builds with the default toolchain instead of `+nightly`.
	StableToolchain bool `json:"stableToolchain"`

	// Target is the rustc target triple.
	Target string `json:"target"`

	// Release builds with the release profile.
	Release bool `json:"release"`
}

// NewBuildConfig returns a BuildConfig for the project at projectPath using nightly and DefaultTarget.
func NewBuildConfig(projectPath string) *BuildConfig {
	return &BuildConfig{
		ProjectPath: projectPath,
		Features:    []string{},
		Target:      DefaultTarget,
	}
}

// toolchainArgs returns the rustup toolchain selector, if any, that precedes every cargo subcommand.
func (b *BuildConfig) toolchainArgs() []string {
	if b.StableToolchain {
		return nil
	}
	return []string{"+nightly"}
}

// target returns the configured target or DefaultTarget.
func (b *BuildConfig) target() string {
	if b.Target == "" {
		return DefaultTarget
	}
	return b.Target
}

// Args returns the cargo arguments used to build the project.
func (b *BuildConfig) Args() []string {
	args := append(b.toolchainArgs(), "build", "--lib", "--target", b.target())
	if b.Release {
		args = append(args, "--release")
	}
	if b.Package != "" {
		args = append(args, "--package", b.Package)
	}
	if len(b.Features) > 0 {
		args = append(args, "--features", strings.Join(b.Features, ","))
	}
	return args
}

// ArtifactDirectory returns the directory cargo writes the program to.
func (b *BuildConfig) ArtifactDirectory() string {
	profile := "debug"
	if b.Release {
		profile = "release"
	}
	return filepath.Join(b.ProjectPath, "target", b.target(), profile)
}

// Validate checks that the project can be built.
func (b *BuildConfig) Validate() error {
	if b.ProjectPath == "" {
		return errors.New("project path must be provided")
	}
	manifest := filepath.Join(b.ProjectPath, "Cargo.toml")
	if _, err := os.Stat(manifest); err != nil {
		return errors.Errorf("could not find a Cargo.toml in %s", b.ProjectPath)
	}
	return nil
}

/*
Build compiles the project with cargo and returns the path of the resulting wasm program. When a package is selected
its artifact is looked up by name, otherwise the artifact directory must hold exactly one program.
*/
func (b *BuildConfig) Build(ctx context.Context) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	logger := logging.GlobalLogger.NewSubLogger("module", logging.COMPILATION_SERVICE)

	version, err := GetSystemCargoVersion(b.toolchainArgs()...)
	if err != nil {
		return "", err
	}
	logger.Info("Building ", colors.Bold, b.ProjectPath, colors.Reset, " with cargo ", version.String())
	if err := CheckCargoVersion(version); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "cargo", b.Args()...)
	cmd.Dir = b.ProjectPath
	output, err := utils.RunCommand(cmd, nil)
	if err != nil {
		return "", fmt.Errorf("error while executing cargo:\n%s\n\nCommand Output:\n%s\n", err.Error(), string(output.Combined))
	}
	logger.Debug("cargo output:\n", string(output.Combined))

	if b.Package != "" {
		artifact := filepath.Join(b.ArtifactDirectory(), strings.ReplaceAll(b.Package, "-", "_")+WasmExtension)
		if _, err := os.Stat(artifact); err != nil {
			return "", errors.Errorf("failed to find %s after building package %s", artifact, b.Package)
		}
		return artifact, nil
	}
	return FindArtifact(b.ArtifactDirectory(), WasmExtension)
}

// GetSystemCargoVersion runs `cargo --version` with the given toolchain selector and parses the release number.
func GetSystemCargoVersion(toolchainArgs ...string) (*semver.Version, error) {
	output, err := utils.RunCommand(exec.Command("cargo", append(toolchainArgs, "--version")...), nil)
	if err != nil {
		return nil, fmt.Errorf("error while executing cargo:\nOUTPUT:\n%s\nERROR: %s\n", string(output.Combined), err.Error())
	}
	return parseCargoVersion(output.Stdout)
}

// parseCargoVersion extracts the semver release from `cargo --version` output.
func parseCargoVersion(out []byte) (*semver.Version, error) {
	versionStr := cargoVersionRegex.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse cargo version using 'cargo --version'")
	}
	return semver.NewVersion(versionStr)
}

// CheckCargoVersion returns an error if version predates MinimumCargoVersion.
func CheckCargoVersion(version *semver.Version) error {
	if version.LessThan(semver.MustParse(MinimumCargoVersion)) {
		return errors.Errorf("cargo %s is too old, at least %s is required", version, MinimumCargoVersion)
	}
	return nil
}
