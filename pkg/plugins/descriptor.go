package plugins

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/platinummonkey/protogen/pkg/codegen"
)

// Kind is the provenance of a protoc plugin
type Kind string

const (
	// KindCoordinate is a native executable published to an artifact repository
	KindCoordinate Kind = "coordinate"
	// KindPath is a native executable on the local filesystem or PATH
	KindPath Kind = "path"
	// KindURL is a native executable downloaded from a URL
	KindURL Kind = "url"
	// KindJVM is a JVM artifact wrapped in a generated launcher
	KindJVM Kind = "jvm"
)

// Kinds lists every kind in resolution order
var Kinds = []Kind{KindCoordinate, KindPath, KindURL, KindJVM}

// Descriptor describes one protoc plugin. Kind selects which of the
// payload fields apply:
//
//	coordinate  Coordinate
//	path        Name (looked up on PATH) or Path
//	url         URL
//	jvm         Coordinate, optional MainClass
type Descriptor struct {
	Kind Kind `json:"kind" yaml:"-"`

	Coordinate *codegen.Coordinate `json:"coordinate,omitempty" yaml:"coordinate,omitempty"`
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	Path       string              `json:"path,omitempty" yaml:"path,omitempty"`
	URL        string              `json:"url,omitempty" yaml:"url,omitempty"`
	MainClass  string              `json:"mainClass,omitempty" yaml:"mainClass,omitempty"`

	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Order   int      `json:"order" yaml:"order,omitempty"`
	Skip    bool     `json:"skip" yaml:"skip,omitempty"`
}

// ID is the hex SHA-256 of the descriptor's canonical JSON form. Equal
// descriptors share an ID.
func (d Descriptor) ID() string {
	// a struct of strings, ints and bools always marshals
	data, _ := json.Marshal(d)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Validate checks that the payload matches the kind
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindCoordinate, KindJVM:
		if d.Coordinate == nil {
			return &codegen.ConfigurationError{Input: d.String(), Reason: "coordinate is required"}
		}
		return d.Coordinate.Validate()
	case KindPath:
		if (d.Name == "") == (d.Path == "") {
			return &codegen.ConfigurationError{Input: d.String(), Reason: "exactly one of name and path is required"}
		}
		return nil
	case KindURL:
		if d.URL == "" {
			return &codegen.ConfigurationError{Input: d.String(), Reason: "url is required"}
		}
		return nil
	default:
		return &codegen.ConfigurationError{Input: d.String(), Reason: fmt.Sprintf("unknown plugin kind %q", d.Kind)}
	}
}

// String names the plugin for logs and errors
func (d Descriptor) String() string {
	switch d.Kind {
	case KindCoordinate, KindJVM:
		if d.Coordinate != nil {
			return fmt.Sprintf("%s plugin %s", d.Kind, d.Coordinate)
		}
	case KindPath:
		if d.Path != "" {
			return "path plugin " + d.Path
		}
		if d.Name != "" {
			return "path plugin " + d.Name
		}
	case KindURL:
		if d.URL != "" {
			return "url plugin " + d.URL
		}
	}
	return fmt.Sprintf("%s plugin", d.Kind)
}

// Descriptors groups plugin descriptors by provenance
type Descriptors struct {
	Coordinate []Descriptor
	Path       []Descriptor
	URL        []Descriptor
	JVM        []Descriptor
}

// Of returns the descriptors of one kind with Kind set
func (ds Descriptors) Of(kind Kind) []Descriptor {
	var list []Descriptor
	switch kind {
	case KindCoordinate:
		list = ds.Coordinate
	case KindPath:
		list = ds.Path
	case KindURL:
		list = ds.URL
	case KindJVM:
		list = ds.JVM
	}

	out := make([]Descriptor, len(list))
	for i, d := range list {
		d.Kind = kind
		out[i] = d
	}
	return out
}

// All returns every descriptor in resolution order
func (ds Descriptors) All() []Descriptor {
	var all []Descriptor
	for _, k := range Kinds {
		all = append(all, ds.Of(k)...)
	}
	return all
}

// Len is the total number of descriptors
func (ds Descriptors) Len() int {
	return len(ds.Coordinate) + len(ds.Path) + len(ds.URL) + len(ds.JVM)
}
