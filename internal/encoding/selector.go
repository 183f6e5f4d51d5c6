package encoding

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"lapsync/internal/services"
)

// SoftwareCodec is the fallback encoder that ends every candidate list.
const SoftwareCodec = "libx264"

// h264MaxWidth is the widest frame the hardware H.264 encoders accept.
const h264MaxWidth = 4096

// Candidate is one encoder configuration to try.
type Candidate struct {
	Codec    string
	Args     []string
	MaxWidth int
	Hardware bool
}

func (c Candidate) String() string { return c.Codec }

// catalog is the fixed priority order.
var catalog = []Candidate{
	{Codec: "h264_nvenc", Args: []string{"-preset", "p5", "-cq:v", "19"}, MaxWidth: h264MaxWidth, Hardware: true},
	{Codec: "hevc_nvenc", Args: []string{"-preset", "p5", "-cq:v", "23", "-tag:v", "hvc1"}, Hardware: true},
	{Codec: "h264_qsv", Args: []string{"-global_quality", "23"}, MaxWidth: h264MaxWidth, Hardware: true},
	{Codec: "hevc_qsv", Args: []string{"-global_quality", "26", "-tag:v", "hvc1"}, Hardware: true},
	{Codec: "h264_amf", Args: []string{"-quality", "balanced", "-rc", "cqp", "-qp_i", "20", "-qp_p", "20", "-qp_b", "22"}, MaxWidth: h264MaxWidth, Hardware: true},
	{Codec: "hevc_amf", Args: []string{"-quality", "balanced", "-rc", "cqp", "-qp_i", "24", "-qp_p", "24", "-qp_b", "26", "-tag:v", "hvc1"}, Hardware: true},
	{Codec: SoftwareCodec, Args: []string{"-preset", "veryfast", "-crf", "18"}},
}

// KnownCodecs lists every codec the selector can emit, in priority order.
func KnownCodecs() []string {
	out := make([]string, len(catalog))
	for i, c := range catalog {
		out[i] = c.Codec
	}
	return out
}

// SelectOptions adjusts the candidate order.
type SelectOptions struct {
	// Preferred moves a usable codec to the front.
	Preferred string
	// DisableHardware keeps only the software fallback.
	DisableHardware bool
}

// Candidates returns the ordered fallback list for a frame width given the
// encoder names ffmpeg reported. The software fallback is always last
// unless it is the preferred codec.
func Candidates(available []string, width int, opts SelectOptions) []Candidate {
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[strings.TrimSpace(name)] = true
	}
	out := make([]Candidate, 0, len(catalog))
	for _, c := range catalog {
		if c.Codec == SoftwareCodec {
			out = append(out, clone(c))
			continue
		}
		if opts.DisableHardware || !have[c.Codec] {
			continue
		}
		if c.MaxWidth > 0 && width > c.MaxWidth {
			continue
		}
		out = append(out, clone(c))
	}

	preferred := strings.ToLower(strings.TrimSpace(opts.Preferred))
	if preferred == "" {
		return out
	}
	for i, c := range out {
		if c.Codec == preferred {
			reordered := append([]Candidate{c}, out[:i]...)
			return append(reordered, out[i+1:]...)
		}
	}
	return out
}

func clone(c Candidate) Candidate {
	c.Args = append([]string(nil), c.Args...)
	return c
}

// ProbeEncoders runs `ffmpeg -encoders` once and returns the encoder names.
func ProbeEncoders(ctx context.Context, ffmpegBinary string) ([]string, error) {
	cmd := exec.CommandContext(ctx, ffmpegBinary, "-hide_banner", "-encoders") //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		detail := ""
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, services.Wrap(services.ErrExternalTool, "encoding", "probe encoders", detail, err)
	}
	names := ParseEncoderList(string(output))
	if len(names) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "encoding", "probe encoders", fmt.Sprintf("%s listed no encoders", ffmpegBinary), nil)
	}
	return names, nil
}

// ParseEncoderList extracts encoder names from `ffmpeg -encoders` output.
// Entry lines start with a six character capability column such as
// "V....D" followed by the encoder name. The legend above the "------"
// separator is skipped.
func ParseEncoderList(output string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "------") {
			names = names[:0]
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !isCapabilityColumn(fields[0]) || fields[1] == "=" {
			continue
		}
		names = append(names, fields[1])
	}
	return names
}

func isCapabilityColumn(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
