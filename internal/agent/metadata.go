package agent

// DefaultPriority is applied by the marker and the manifest decoder when a
// registration does not set an explicit priority.
const DefaultPriority = 50

// Source identifies which discovery pattern produced a registration.
type Source string

const (
	// SourceCode marks agents registered by compiled-in modules via the marker.
	SourceCode Source = "code"
	// SourceManifest marks agents bound through an HCL manifest file.
	SourceManifest Source = "manifest"
)

// ParseSource converts a user-supplied string into a Source. The second
// return value is false for anything that is not a known source.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceCode, SourceManifest:
		return Source(s), true
	}
	return "", false
}

// Metadata describes one registrable agent. All fields except Enabled are
// fixed once NewMetadata has validated them; Enabled may be flipped after
// registration through the registry.
type Metadata struct {
	Name         string
	Source       Source
	Tags         []string
	Priority     int
	Enabled      bool
	Dependencies []string
	Attributes   map[string]any
}

// NewMetadata validates the given metadata and returns a copy that owns its
// slices. It fails with a *ValidationError on the first violated invariant;
// no partially-valid value is ever returned.
func NewMetadata(md Metadata) (*Metadata, error) {
	if md.Name == "" {
		return nil, validationErr(ErrInvalidName, "agent name must be a non-empty string")
	}
	if md.Priority < 0 {
		return nil, validationErr(ErrInvalidPriority, "priority must be >= 0, got %d", md.Priority)
	}
	for i, tag := range md.Tags {
		if tag == "" {
			return nil, validationErr(ErrInvalidTags, "tag %d is empty", i)
		}
	}
	for i, dep := range md.Dependencies {
		if dep == "" {
			return nil, validationErr(ErrInvalidDependencies, "dependency %d is empty", i)
		}
	}

	out := md
	if out.Source == "" {
		out.Source = SourceCode
	}
	out.Tags = append([]string(nil), md.Tags...)
	out.Dependencies = append([]string(nil), md.Dependencies...)
	if md.Attributes != nil {
		out.Attributes = make(map[string]any, len(md.Attributes))
		for k, v := range md.Attributes {
			out.Attributes[k] = v
		}
	}
	return &out, nil
}

// HasTag reports whether the metadata carries the given tag.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
