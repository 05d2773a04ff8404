package containerd

import (
	"fmt"
	"strings"
)

// mirrorHeaderFormat is the CRI registry mirrors table header for an upstream
// registry in containerd's config.toml.
const mirrorHeaderFormat = `[plugins."io.containerd.grpc.v1.cri".registry.mirrors.%q]`

// MirrorHeader returns the exact table header for the upstream registry's
// mirror block.
//
// Example for docker.io:
//
//	[plugins."io.containerd.grpc.v1.cri".registry.mirrors."docker.io"]
func MirrorHeader(upstream string) string {
	return fmt.Sprintf(mirrorHeaderFormat, upstream)
}

// RenderMirrorBlock renders the canonical mirror block redirecting pulls for
// the upstream registry to the given endpoint.
//
// Example output:
//
//	[plugins."io.containerd.grpc.v1.cri".registry.mirrors."docker.io"]
//	  endpoint = ["http://10.0.0.1:5000"]
func RenderMirrorBlock(upstream, endpoint string) string {
	var builder strings.Builder

	builder.WriteString(MirrorHeader(upstream))
	builder.WriteByte('\n')
	builder.WriteString(fmt.Sprintf("  endpoint = [%q]\n", endpoint))

	return builder.String()
}

// StripMirrorBlocks removes every mirror block whose header exactly matches
// the upstream registry from the configuration text. All other sections pass
// through unchanged, including ordering and the file's trailing newline.
// Returns the filtered text and the number of removed blocks.
//
// The filter is a two-state line machine: a line equal to the header literal
// starts skipping; the next table header ends the block and is emitted,
// unless it is a sub-table of the removed mirror (its dotted path extends
// the mirror header), which goes with the block.
func StripMirrorBlocks(content, upstream string) (string, int) {
	header := MirrorHeader(upstream)
	subTablePrefix := strings.TrimSuffix(header, "]") + "."

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))

	removed := 0
	skipping := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == header {
			skipping = true
			removed++

			continue
		}

		if skipping {
			if !strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, subTablePrefix) {
				continue
			}

			skipping = false
		}

		kept = append(kept, line)
	}

	stripped := strings.Join(kept, "\n")

	// A block running to end of file consumes the empty element the final
	// newline splits into; put the newline back so surrounding content is
	// byte-identical.
	if removed > 0 && stripped != "" &&
		strings.HasSuffix(content, "\n") && !strings.HasSuffix(stripped, "\n") {
		stripped += "\n"
	}

	return stripped, removed
}

// AppendMirrorBlock appends the canonical mirror block for the upstream
// registry, separated from any existing content by a blank line.
func AppendMirrorBlock(content, upstream, endpoint string) string {
	block := RenderMirrorBlock(upstream, endpoint)

	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return block
	}

	return trimmed + "\n\n" + block
}
