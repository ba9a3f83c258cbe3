// Package catalog defines the software-catalog entity model and the
// aggregation layer that merges local and imported entities into one
// logical catalog.
//
// Entities follow the Backstage descriptor format: YAML documents with
// apiVersion, kind, metadata, and spec blocks. Two kinds are understood:
// Component (a piece of software) and Group (an owning team). Components
// carry free-form type/lifecycle/owner fields plus optional system
// membership and dependsOn references to other components by name.
package catalog

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	aperrors "github.com/iandesj/aperture/pkg/errors"
)

// Entity kinds recognized in descriptor documents.
const (
	KindComponent = "Component"
	KindGroup     = "Group"
)

// apiVersionPrefix is the accepted apiVersion family for entity documents.
const apiVersionPrefix = "backstage.io/"

// DefaultNamespace is used for group references that omit a namespace.
const DefaultNamespace = "default"

// SourceKind identifies where an entity instance came from.
type SourceKind string

// Known entity sources. SourceLocal marks entities read from the local
// catalog directory; the others name remote providers.
const (
	SourceLocal  SourceKind = "local"
	SourceGitHub SourceKind = "github"
	SourceGitLab SourceKind = "gitlab"
)

// Link is a reference attached to an entity (documentation, dashboards, ...).
type Link struct {
	URL   string `yaml:"url" json:"url"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Icon  string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Metadata holds the identity and descriptive fields shared by all entities.
type Metadata struct {
	Name        string   `yaml:"name" json:"name"`
	Namespace   string   `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Links       []Link   `yaml:"links,omitempty" json:"links,omitempty"`
}

// ComponentSpec is the spec block of a Component document.
type ComponentSpec struct {
	Type      string   `yaml:"type" json:"type"`
	Lifecycle string   `yaml:"lifecycle" json:"lifecycle"`
	Owner     string   `yaml:"owner" json:"owner"`
	System    string   `yaml:"system,omitempty" json:"system,omitempty"`
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
}

// Component is a catalog entry describing a piece of software.
// Components are immutable once parsed; re-importing replaces the prior
// value for the same identity.
type Component struct {
	APIVersion string        `yaml:"apiVersion" json:"apiVersion"`
	Kind       string        `yaml:"kind" json:"kind"`
	Metadata   Metadata      `yaml:"metadata" json:"metadata"`
	Spec       ComponentSpec `yaml:"spec" json:"spec"`
}

// Name returns the component's catalog-wide unique name.
func (c Component) Name() string { return c.Metadata.Name }

// DependsOn reports whether the component declares a dependency on name.
func (c Component) DependsOn(name string) bool {
	for _, dep := range c.Spec.DependsOn {
		if dep == name {
			return true
		}
	}
	return false
}

// GroupProfile holds optional display fields for a group.
type GroupProfile struct {
	DisplayName string `yaml:"displayName,omitempty" json:"displayName,omitempty"`
	Email       string `yaml:"email,omitempty" json:"email,omitempty"`
	Picture     string `yaml:"picture,omitempty" json:"picture,omitempty"`
}

// GroupSpec is the spec block of a Group document.
type GroupSpec struct {
	Type    string       `yaml:"type,omitempty" json:"type,omitempty"`
	Profile GroupProfile `yaml:"profile,omitempty" json:"profile,omitempty"`
	Parent  string       `yaml:"parent,omitempty" json:"parent,omitempty"`
	Members []string     `yaml:"members,omitempty" json:"members,omitempty"`
}

// Group is a catalog entry describing an owning team.
// Identity is the (namespace, name) pair; namespace defaults to "default".
type Group struct {
	APIVersion string    `yaml:"apiVersion" json:"apiVersion"`
	Kind       string    `yaml:"kind" json:"kind"`
	Metadata   Metadata  `yaml:"metadata" json:"metadata"`
	Spec       GroupSpec `yaml:"spec,omitempty" json:"spec,omitempty"`
}

// Namespace returns the group's namespace, defaulting to "default".
func (g Group) Namespace() string {
	if g.Metadata.Namespace == "" {
		return DefaultNamespace
	}
	return g.Metadata.Namespace
}

// Ref returns the canonical owner reference for the group,
// e.g. "group:default/team-platform".
func (g Group) Ref() string {
	return "group:" + strings.ToLower(g.Namespace()) + "/" + strings.ToLower(g.Metadata.Name)
}

// ImportSource records where an imported component was fetched from.
type ImportSource struct {
	Type       SourceKind `json:"type"`
	Repository string     `json:"repository"`
	URL        string     `json:"url"`
}

// ImportedComponent wraps a Component with import provenance.
// The storage key is the (type, repository, component name) triple, so two
// providers or two repositories can describe components with colliding
// names without clobbering each other in the overlay.
type ImportedComponent struct {
	Component  Component    `json:"component"`
	Source     ImportSource `json:"source"`
	LastSynced time.Time    `json:"lastSynced"`
}

// Key returns the composite storage key for the imported component.
func (ic ImportedComponent) Key() string {
	return string(ic.Source.Type) + ":" + ic.Source.Repository + ":" + ic.Component.Name()
}

// NormalizeGroupRef converts an owner reference or bare group name to the
// canonical "group:<namespace>/<name>" form, lowercased, with the namespace
// defaulting to "default".
//
// Accepted inputs: "team-platform", "group:team-platform",
// "group:default/team-platform".
func NormalizeGroupRef(refOrName string) string {
	trimmed := strings.TrimSpace(refOrName)

	if rest, ok := strings.CutPrefix(trimmed, "group:"); ok {
		if ns, name, ok := strings.Cut(rest, "/"); ok {
			if ns == "" {
				ns = DefaultNamespace
			}
			return "group:" + strings.ToLower(ns) + "/" + strings.ToLower(name)
		}
		return "group:" + DefaultNamespace + "/" + strings.ToLower(rest)
	}

	return "group:" + DefaultNamespace + "/" + strings.ToLower(trimmed)
}

// envelope is the minimal shape decoded to identify a document's kind
// before committing to a concrete entity type.
type envelope struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
}

func (e envelope) recognized() bool {
	return strings.HasPrefix(e.APIVersion, apiVersionPrefix)
}

// ParseComponent parses a single Component document and validates its
// required fields. A document of the wrong kind returns (nil, nil) so
// callers can treat it as "not a component" rather than an error; a
// Component document missing required fields returns a descriptive error.
func ParseComponent(data []byte) (*Component, error) {
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, aperrors.Wrap(aperrors.ErrCodeInvalidEntity, err, "malformed entity document")
	}
	if env.Kind != KindComponent || !env.recognized() {
		return nil, nil
	}

	var c Component
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, aperrors.Wrap(aperrors.ErrCodeInvalidEntity, err, "malformed component document")
	}
	if err := validateComponent(c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validateComponent(c Component) error {
	switch {
	case c.Metadata.Name == "":
		return aperrors.New(aperrors.ErrCodeInvalidEntity, "component is missing metadata.name")
	case c.Spec.Type == "":
		return aperrors.New(aperrors.ErrCodeInvalidEntity, "component %q is missing spec.type", c.Metadata.Name)
	case c.Spec.Lifecycle == "":
		return aperrors.New(aperrors.ErrCodeInvalidEntity, "component %q is missing spec.lifecycle", c.Metadata.Name)
	case c.Spec.Owner == "":
		return aperrors.New(aperrors.ErrCodeInvalidEntity, "component %q is missing spec.owner", c.Metadata.Name)
	}
	return nil
}

// decodeDocuments splits a (possibly multi-document) YAML stream and returns
// each non-empty document re-marshaled as its own byte slice.
func decodeDocuments(data []byte) ([][]byte, error) {
	var docs [][]byte
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if doc == nil {
			continue
		}
		raw, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, raw)
	}
	return docs, nil
}
