package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
)

// ErrInvalidPatch marks a patch set that is out of range or overlapping.
// Patch sets are built non-overlapping by construction; the applicator still
// refuses to splice a bad set rather than corrupt text.
var ErrInvalidPatch = errors.New("invalid patch set")

// generatePatches translates the resolved presence calls into the file's
// edit set:
//
//   - one insertion per qualifying usage site, injecting the synthetic
//     boolean prop (only when at least one verdict is true);
//   - one insertion adding the props parameter per wrapper function that
//     lacks one;
//   - one replacement per marker call, rewriting it to read the synthetic
//     prop.
func (s *session) generatePatches(f *sourceFile, calls []presenceCall) []Patch {
	patches := make([]Patch, 0)

	if anyPresent(calls) {
		patches = append(patches, s.usageInjectionPatches(f, calls)...)
	}
	patches = append(patches, markerRewritePatches(f)...)

	sort.SliceStable(patches, func(i, j int) bool {
		return patches[i].Start < patches[j].Start
	})
	return patches
}

func anyPresent(calls []presenceCall) bool {
	for _, call := range calls {
		if call.present {
			return true
		}
	}
	return false
}

// usageInjectionPatches injects <prop>={verdict} on every usage site whose
// defining file is the file containing the marker call. Injection is skipped
// when the opening tag already carries the prop, so re-analyzing already
// patched text stays idempotent.
func (s *session) usageInjectionPatches(f *sourceFile, calls []presenceCall) []Patch {
	type injectionKey struct {
		pos  uint32
		prop string
	}
	seen := make(map[injectionKey]struct{})

	patches := make([]Patch, 0)
	for _, call := range calls {
		prop := PropName(call.target)

		for _, usage := range f.usages {
			defFile, err := s.resolveUsageDefiningFile(f, usage)
			if err != nil || defFile != call.sourceFile {
				continue
			}

			key := injectionKey{pos: usage.InsertPos, prop: prop}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if bytes.Contains(f.source[usage.TagStart:usage.TagEnd], []byte(prop)) {
				continue
			}

			patches = append(patches, Patch{
				Start:       usage.InsertPos,
				End:         usage.InsertPos,
				Replacement: " " + prop + "={" + strconv.FormatBool(call.present) + "}",
			})
		}
	}
	return patches
}

// markerRewritePatches rewrites every marker call in the file to read its
// synthetic prop, and gives each enclosing wrapper function a props
// parameter if it declares none. At most one parameter patch is emitted per
// wrapper even when several marker calls share it. A call outside any
// wrapper is left alone: there is no component function to receive the prop,
// so the rewritten form would read an undeclared props binding.
func markerRewritePatches(f *sourceFile) []Patch {
	patches := make([]Patch, 0)
	paramPatched := make(map[uint32]struct{})

	paramText := "props"
	if parser.IsTypeScriptFile(f.path) {
		paramText = "props: any"
	}

	// Markers arrive in pre-order; a call nested inside an already rewritten
	// call span is dropped so the patch set stays non-overlapping.
	var lastEnd uint32

	for _, call := range f.markers {
		if call.CallStart < lastEnd {
			continue
		}
		if !call.HasWrapper {
			continue
		}
		if !call.HasParam {
			if _, done := paramPatched[call.WrapperStart]; !done {
				paramPatched[call.WrapperStart] = struct{}{}
				patches = append(patches, Patch{
					Start:       call.ParamInsertPos,
					End:         call.ParamInsertPos,
					Replacement: paramText,
				})
			}
		}

		prop := PropName(call.Target)
		rewritten := markerFunction + "(" + call.ArgText + ", props." + prop + ")"

		// Already reading the prop: the file was patched before.
		original := string(f.source[call.CallStart:call.CallEnd])
		if strings.Contains(original, "props."+prop) {
			continue
		}

		patches = append(patches, Patch{
			Start:       call.CallStart,
			End:         call.CallEnd,
			Replacement: rewritten,
		})
		lastEnd = call.CallEnd
	}
	return patches
}

// ApplyPatches applies a patch set to the original text. Patches are applied
// in descending start order so earlier offsets stay valid after each splice.
// The set is validated first: every range must lie inside the text and no
// two patches may overlap; a violating set is rejected outright.
func ApplyPatches(text []byte, patches []Patch) ([]byte, error) {
	if len(patches) == 0 {
		return text, nil
	}

	ordered := make([]Patch, len(patches))
	copy(ordered, patches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	size := uint32(len(text))
	for i, p := range ordered {
		if p.Start > p.End || p.End > size {
			return nil, fmt.Errorf("patch [%d,%d) out of range for %d bytes: %w",
				p.Start, p.End, size, ErrInvalidPatch)
		}
		if i > 0 && ordered[i-1].Start < p.End {
			return nil, fmt.Errorf("patches [%d,%d) and [%d,%d) overlap: %w",
				p.Start, p.End, ordered[i-1].Start, ordered[i-1].End, ErrInvalidPatch)
		}
	}

	result := make([]byte, 0, len(text)+len(patches)*16)
	result = append(result, text...)
	for _, p := range ordered {
		tail := make([]byte, len(result)-int(p.End))
		copy(tail, result[p.End:])
		result = append(result[:p.Start], p.Replacement...)
		result = append(result, tail...)
	}

	return result, nil
}
