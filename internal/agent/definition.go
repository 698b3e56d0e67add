package agent

// OriginUnknown is used when a registration cannot name the file or module
// it came from.
const OriginUnknown = "unknown"

// Factory creates one agent instance. The core never inspects the returned
// value; it is handed to the hosting application as-is. Factories must be
// safe to call more than once.
type Factory func() (any, error)

// Definition is an accepted, finalized registration: the factory plus its
// validated metadata and the origin recorded for diagnostics. Exactly one
// Definition exists per name in a registry at any time.
type Definition struct {
	Name     string
	Factory  Factory
	Metadata *Metadata
	Origin   string
}

// NewDefinition validates and builds a Definition. The factory is checked
// for presence only; it is never invoked here.
func NewDefinition(name string, factory Factory, md *Metadata, origin string) (*Definition, error) {
	if name == "" {
		return nil, validationErr(ErrInvalidName, "definition name must be a non-empty string")
	}
	if factory == nil {
		return nil, validationErr(ErrNilFactory, "definition %q has no factory", name)
	}
	if md == nil || md.Name != name {
		return nil, validationErr(ErrNameMismatch, "definition %q does not match its metadata name", name)
	}
	if origin == "" {
		origin = OriginUnknown
	}
	return &Definition{
		Name:     name,
		Factory:  factory,
		Metadata: md,
		Origin:   origin,
	}, nil
}
