package repository

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/platinummonkey/protogen/pkg/codegen"
)

// maxExpansions bounds ${...} substitution so self-referencing properties terminate
const maxExpansions = 16

// rawDependency is a <dependency> element before property expansion
type rawDependency struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Classifier string
	Scope      string
	Optional   string
	SystemPath string
	Exclusions []exclusion
}

// exclusion removes matching artifacts from a dependency's transitive
// closure. Either field may be "*".
type exclusion struct {
	GroupID    string
	ArtifactID string
}

func (e exclusion) matches(c codegen.Coordinate) bool {
	return (e.GroupID == "*" || e.GroupID == c.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID)
}

// excluded reports whether any of excl matches c
func excluded(excl []exclusion, c codegen.Coordinate) bool {
	for _, e := range excl {
		if e.matches(c) {
			return true
		}
	}
	return false
}

// dependency is a dependency with properties expanded and version filled in
type dependency struct {
	Coordinate codegen.Coordinate
	Scope      string
	Optional   bool
	SystemPath string
	Exclusions []exclusion
}

// pom is the subset of a project object model needed to walk dependencies
type pom struct {
	Coordinate   codegen.Coordinate
	Parent       *codegen.Coordinate
	Properties   map[string]string
	Managed      []rawDependency
	Dependencies []rawDependency
}

// parsePOM reads POM XML. Values are kept unexpanded until the parent
// chain has been merged with inherit.
func parsePOM(data []byte) (*pom, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPOM, err)
	}

	project := doc.SelectElement("project")
	if project == nil {
		return nil, fmt.Errorf("%w: missing <project> element", ErrInvalidPOM)
	}

	p := &pom{
		Coordinate: codegen.Coordinate{
			GroupID:    childText(project, "groupId"),
			ArtifactID: childText(project, "artifactId"),
			Version:    childText(project, "version"),
			Type:       childText(project, "packaging"),
		},
		Properties: make(map[string]string),
	}

	if parent := project.SelectElement("parent"); parent != nil {
		p.Parent = &codegen.Coordinate{
			GroupID:    childText(parent, "groupId"),
			ArtifactID: childText(parent, "artifactId"),
			Version:    childText(parent, "version"),
			Type:       "pom",
		}
		if p.Coordinate.GroupID == "" {
			p.Coordinate.GroupID = p.Parent.GroupID
		}
		if p.Coordinate.Version == "" {
			p.Coordinate.Version = p.Parent.Version
		}
	}

	if props := project.SelectElement("properties"); props != nil {
		for _, el := range props.ChildElements() {
			p.Properties[el.Tag] = strings.TrimSpace(el.Text())
		}
	}

	if mgmt := project.SelectElement("dependencyManagement"); mgmt != nil {
		p.Managed = readDependencies(mgmt.SelectElement("dependencies"))
	}
	p.Dependencies = readDependencies(project.SelectElement("dependencies"))

	return p, nil
}

func readDependencies(el *etree.Element) []rawDependency {
	if el == nil {
		return nil
	}

	var deps []rawDependency
	for _, d := range el.SelectElements("dependency") {
		deps = append(deps, rawDependency{
			GroupID:    childText(d, "groupId"),
			ArtifactID: childText(d, "artifactId"),
			Version:    childText(d, "version"),
			Type:       childText(d, "type"),
			Classifier: childText(d, "classifier"),
			Scope:      childText(d, "scope"),
			Optional:   childText(d, "optional"),
			SystemPath: childText(d, "systemPath"),
			Exclusions: readExclusions(d.SelectElement("exclusions")),
		})
	}
	return deps
}

func readExclusions(el *etree.Element) []exclusion {
	if el == nil {
		return nil
	}

	var excl []exclusion
	for _, e := range el.SelectElements("exclusion") {
		excl = append(excl, exclusion{
			GroupID:    childText(e, "groupId"),
			ArtifactID: childText(e, "artifactId"),
		})
	}
	return excl
}

// inherit merges properties and managed versions from parent. Values
// declared by p take precedence.
func (p *pom) inherit(parent *pom) {
	for k, v := range parent.Properties {
		if _, ok := p.Properties[k]; !ok {
			p.Properties[k] = v
		}
	}
	p.Managed = append(p.Managed, parent.Managed...)
}

// properties returns the property set used for expansion, including the
// built-in project.* names
func (p *pom) properties() map[string]string {
	props := make(map[string]string, len(p.Properties)+6)
	for k, v := range p.Properties {
		props[k] = v
	}
	props["project.groupId"] = p.Coordinate.GroupID
	props["project.artifactId"] = p.Coordinate.ArtifactID
	props["project.version"] = p.Coordinate.Version
	props["pom.version"] = p.Coordinate.Version
	if p.Parent != nil {
		props["project.parent.groupId"] = p.Parent.GroupID
		props["project.parent.version"] = p.Parent.Version
	}
	return props
}

// dependencies expands the declared dependencies. Missing versions are
// taken from dependencyManagement; a dependency that still has no
// version is an error.
func (p *pom) dependencies() ([]dependency, error) {
	props := p.properties()

	managed := make(map[string]string, len(p.Managed))
	for _, m := range p.Managed {
		c := expandCoordinate(m, props)
		key := managementKey(c)
		// first declaration wins, the child's entries come before the parent's
		if _, ok := managed[key]; !ok {
			managed[key] = c.Version
		}
	}

	deps := make([]dependency, 0, len(p.Dependencies))
	for _, raw := range p.Dependencies {
		c := expandCoordinate(raw, props)
		if c.Version == "" {
			c.Version = managed[managementKey(c)]
		}
		if c.Version == "" {
			return nil, fmt.Errorf("%w: dependency %s:%s of %s has no version", ErrInvalidPOM, c.GroupID, c.ArtifactID, p.Coordinate)
		}

		scope := expand(raw.Scope, props)
		if scope == "" {
			scope = codegen.ScopeCompile
		}
		deps = append(deps, dependency{
			Coordinate: c,
			Scope:      scope,
			Optional:   strings.EqualFold(expand(raw.Optional, props), "true"),
			SystemPath: expand(raw.SystemPath, props),
			Exclusions: expandExclusions(raw.Exclusions, props),
		})
	}
	return deps, nil
}

func expandCoordinate(d rawDependency, props map[string]string) codegen.Coordinate {
	return codegen.Coordinate{
		GroupID:    expand(d.GroupID, props),
		ArtifactID: expand(d.ArtifactID, props),
		Version:    expand(d.Version, props),
		Type:       expand(d.Type, props),
		Classifier: expand(d.Classifier, props),
	}
}

func expandExclusions(in []exclusion, props map[string]string) []exclusion {
	if len(in) == 0 {
		return nil
	}
	out := make([]exclusion, len(in))
	for i, e := range in {
		out[i] = exclusion{GroupID: expand(e.GroupID, props), ArtifactID: expand(e.ArtifactID, props)}
	}
	return out
}

func managementKey(c codegen.Coordinate) string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.TypeOrDefault("jar") + ":" + c.Classifier
}

// expand substitutes ${name} references. Unknown references are left
// in place.
func expand(s string, props map[string]string) string {
	var b strings.Builder
	for i := 0; i < maxExpansions; i++ {
		start := strings.Index(s, "${")
		if start < 0 {
			return s
		}

		b.Reset()
		rest := s
		changed := false
		for {
			start = strings.Index(rest, "${")
			if start < 0 {
				b.WriteString(rest)
				break
			}
			end := strings.IndexByte(rest[start:], '}')
			if end < 0 {
				b.WriteString(rest)
				break
			}
			end += start

			b.WriteString(rest[:start])
			if value, ok := props[rest[start+2:end]]; ok {
				b.WriteString(value)
				changed = true
			} else {
				b.WriteString(rest[start : end+1])
			}
			rest = rest[end+1:]
		}

		if !changed {
			return s
		}
		s = b.String()
	}
	return s
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
