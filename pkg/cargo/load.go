package cargo

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/matzehuels/debstatus/pkg/errors"
)

// Options mirror the cargo flags that shape dependency resolution.
type Options struct {
	ManifestPath      string
	Features          []string
	AllFeatures       bool
	NoDefaultFeatures bool

	// Target filters platform-specific dependencies. When empty and
	// AllTargets is false, the host triple is used.
	Target     string
	AllTargets bool

	Frozen        bool
	Locked        bool
	Offline       bool
	UnstableFlags []string
}

// cargoBinary honours $CARGO, which cargo sets when it runs a subcommand.
func cargoBinary() string {
	if c := os.Getenv("CARGO"); c != "" {
		return c
	}
	return "cargo"
}

// Args builds the `cargo metadata` argument list for opts. target is the
// resolved platform filter, empty for all targets.
func (o Options) Args(target string) []string {
	args := []string{"metadata", "--format-version", "1"}
	if o.ManifestPath != "" {
		args = append(args, "--manifest-path", o.ManifestPath)
	}
	if len(o.Features) > 0 {
		args = append(args, "--features", strings.Join(o.Features, ","))
	}
	if o.AllFeatures {
		args = append(args, "--all-features")
	}
	if o.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	if target != "" {
		args = append(args, "--filter-platform", target)
	}
	if o.Frozen {
		args = append(args, "--frozen")
	}
	if o.Locked {
		args = append(args, "--locked")
	}
	if o.Offline {
		args = append(args, "--offline")
	}
	for _, flag := range o.UnstableFlags {
		args = append(args, "-Z", flag)
	}
	return args
}

// Load runs `cargo metadata` and decodes its output.
func Load(ctx context.Context, opts Options) (*Metadata, error) {
	target := opts.Target
	if target == "" && !opts.AllTargets {
		host, err := HostTriple(ctx)
		if err != nil {
			return nil, err
		}
		target = host
	}

	cmd := exec.CommandContext(ctx, cargoBinary(), opts.Args(target)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "cargo metadata failed"
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "%s", msg)
	}
	return Decode(&stdout)
}

// HostTriple asks rustc for the host target triple.
func HostTriple(ctx context.Context) (string, error) {
	rustc := os.Getenv("RUSTC")
	if rustc == "" {
		rustc = "rustc"
	}
	out, err := exec.CommandContext(ctx, rustc, "-vV").Output()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidMetadata, err, "run %s -vV", rustc)
	}
	return parseHost(out)
}

func parseHost(out []byte) (string, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if host, ok := strings.CutPrefix(sc.Text(), "host: "); ok {
			return strings.TrimSpace(host), nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidMetadata, "rustc -vV did not report a host triple")
}
