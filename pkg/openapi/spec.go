package openapi

// Version is the OpenAPI release the generated documents declare.
const Version = "3.1.0"

// Spec is an OpenAPI document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// Option configures a Spec at construction.
type Option func(*Spec)

// WithDescription sets info.description.
func WithDescription(desc string) Option {
	return func(s *Spec) {
		s.Info.Description = desc
	}
}

// WithServer appends a server entry. Blank URLs are ignored.
func WithServer(url, desc string) Option {
	return func(s *Spec) {
		if url != "" {
			s.Servers = append(s.Servers, &Server{URL: url, Description: desc})
		}
	}
}

// NewSpec creates an empty document with the shared components registered.
func NewSpec(title, version string, opts ...Option) *Spec {
	s := &Spec{
		OpenAPI:    Version,
		Info:       &Info{Title: title, Version: version},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the item for path, creating it on first use.
func (s *Spec) Path(path string) *PathItem {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}
	return item
}
