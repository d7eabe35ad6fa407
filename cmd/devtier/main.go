// devtier classifies the local machine, or a device described on the
// command line, and prints the resolved rendering tier as JSON.
//
// Without flags it probes the host: DRM sysfs for the GPU, cpuid for the
// processor, and a short throttle benchmark. --renderer, --user-agent and
// --cores replace the matching probe so a visitor's device can be replayed
// from its WebGL renderer string.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"

	"github.com/Zachkp/devtier/adaptive"
	"github.com/Zachkp/devtier/capability"
	"github.com/Zachkp/devtier/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, capability.NewNativeEnvironment()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type output struct {
	CPUBrand string             `json:"cpuBrand,omitempty"`
	Snapshot adaptive.Snapshot  `json:"snapshot"`
	Degraded *adaptive.Snapshot `json:"degraded,omitempty"`
}

func run(args []string, stdout, stderr io.Writer, native capability.Environment) error {
	var (
		configPath  string
		renderer    string
		vendor      string
		userAgent   string
		cores       int
		textureSize int
		attribs     int
		iterations  int
		contextLost bool
		verbose     bool
		compact     bool
	)

	flagSet := pflag.NewFlagSet("devtier", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", os.Getenv("DEVTIER_CONFIG"), "YAML config file for throttle settings")
	flagSet.StringVar(&renderer, "renderer", "", "WebGL renderer string to classify instead of the local GPU")
	flagSet.StringVar(&vendor, "vendor", "", "WebGL vendor string, used with --renderer")
	flagSet.IntVar(&textureSize, "max-texture-size", 16384, "MAX_TEXTURE_SIZE, used with --renderer")
	flagSet.IntVar(&attribs, "max-vertex-attribs", 16, "MAX_VERTEX_ATTRIBS, used with --renderer")
	flagSet.StringVar(&userAgent, "user-agent", "", "user agent to classify instead of the local one")
	flagSet.IntVar(&cores, "cores", 0, "logical core count to classify instead of the local one")
	flagSet.IntVar(&iterations, "iterations", 0, "throttle benchmark iterations (overrides config)")
	flagSet.BoolVar(&contextLost, "context-lost", false, "also print the tier after a graphics context loss")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log detection steps to stderr")
	flagSet.BoolVar(&compact, "compact", false, "print JSON on one line")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if iterations > 0 {
		cfg.Throttle.Iterations = iterations
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if verbose {
		capability.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	env := overrideEnv{Environment: native, userAgent: userAgent, cores: cores}
	if renderer != "" {
		env.graphics = &capability.GraphicsInfo{
			DebugInfo:        true,
			Vendor:           vendor,
			Renderer:         renderer,
			MaxTextureSize:   textureSize,
			MaxVertexAttribs: attribs,
		}
	}

	session := adaptive.NewSession()
	out := output{Snapshot: session.Detect(env, cfg.Throttle)}
	if _, ok := native.(*capability.NativeEnvironment); ok && renderer == "" {
		out.CPUBrand = capability.CPUBrand()
	}
	if contextLost {
		degraded, err := session.ContextLost()
		if err != nil {
			return err
		}
		out.Degraded = &degraded
	}

	enc := json.NewEncoder(stdout)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// overrideEnv replaces individual probes of the wrapped environment.
type overrideEnv struct {
	capability.Environment
	graphics  *capability.GraphicsInfo
	userAgent string
	cores     int
}

func (e overrideEnv) GraphicsContext() (capability.GraphicsInfo, error) {
	if e.graphics != nil {
		return *e.graphics, nil
	}
	return e.Environment.GraphicsContext()
}

func (e overrideEnv) UserAgent() string {
	if e.userAgent != "" {
		return e.userAgent
	}
	return e.Environment.UserAgent()
}

func (e overrideEnv) HardwareConcurrency() (int, bool) {
	if e.cores > 0 {
		return e.cores, true
	}
	return e.Environment.HardwareConcurrency()
}
