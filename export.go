package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StyleBinding maps a CSS property name in the export to a style key in
// the element model.
type StyleBinding struct {
	Property string
	Key      string
}

// DefaultStyleBindings is the minimal export surface: margin-top then
// font-size. url and backgroundColor are not exported.
var DefaultStyleBindings = []StyleBinding{
	{Property: "margin-top", Key: StyleMarginTop},
	{Property: "font-size", Key: StyleFontSize},
}

type StyleProperty struct {
	Name  string
	Value string
}

// StyleProperties is an ordered property bag. It encodes as a JSON/YAML
// object whose keys keep their order.
type StyleProperties []StyleProperty

func (p StyleProperties) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

func (p StyleProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *StyleProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("style properties: expected object, got %v", tok)
	}
	out := StyleProperties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("style properties: %s: %w", key, err)
		}
		out = append(out, StyleProperty{Name: key, Value: value})
	}
	*p = out
	return nil
}

func (p StyleProperties) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, prop := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// SnapshotRecord is the canonical intermediate form of one element. All
// three text artifacts are derived from records, never from elements.
type SnapshotRecord struct {
	ElementType     string          `json:"elementType" yaml:"elementType"`
	Value           string          `json:"value" yaml:"value"`
	StyleProperties StyleProperties `json:"styleProperties" yaml:"styleProperties"`
}

func (r SnapshotRecord) tag() string {
	return strings.ToLower(r.ElementType)
}

type Artifacts struct {
	Structure    string           `json:"structure" yaml:"structure"`
	Presentation string           `json:"presentation" yaml:"presentation"`
	Behavior     string           `json:"behavior" yaml:"behavior"`
	Snapshot     []SnapshotRecord `json:"snapshot" yaml:"snapshot"`
}

// SnapshotJSON encodes the snapshot tab-indented.
func (a Artifacts) SnapshotJSON() ([]byte, error) {
	records := a.Snapshot
	if records == nil {
		records = []SnapshotRecord{}
	}
	out, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(out, '\n'), nil
}

func (a Artifacts) SnapshotYAML() ([]byte, error) {
	out, err := yaml.Marshal(a.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// Bundle lays the artifacts out as one labelled text, for the export view
// and the clipboard.
func (a Artifacts) Bundle() string {
	snapshot, err := a.SnapshotJSON()
	if err != nil {
		snapshot = []byte(err.Error())
	}
	var b strings.Builder
	sections := []struct{ title, body string }{
		{"HTML", a.Structure},
		{"CSS", a.Presentation},
		{"JavaScript", a.Behavior},
		{"JSON", string(snapshot)},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "── %s ──\n", s.title)
		b.WriteString(s.body)
		if !strings.HasSuffix(s.body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

type Exporter struct {
	// Container is the id of the node the script appends to.
	Container string
	Bindings  []StyleBinding
}

func DefaultExporter() Exporter {
	return Exporter{
		Container: "app",
		Bindings:  DefaultStyleBindings,
	}
}

// Export runs the default pipeline.
func Export(elements []Element) Artifacts {
	return DefaultExporter().Export(elements)
}

// Snapshot reduces elements to canonical records, in order. A style key
// the element does not set exports as an empty value.
func (x Exporter) Snapshot(elements []Element) []SnapshotRecord {
	records := make([]SnapshotRecord, 0, len(elements))
	for _, el := range elements {
		props := make(StyleProperties, 0, len(x.Bindings))
		for _, bnd := range x.Bindings {
			props = append(props, StyleProperty{Name: bnd.Property, Value: el.Style[bnd.Key]})
		}
		records = append(records, SnapshotRecord{
			ElementType:     el.Type.String(),
			Value:           el.Text,
			StyleProperties: props,
		})
	}
	return records
}

// Export derives structure, presentation and behavior text in a single
// pass over the snapshot. Output depends only on the input, so repeated
// calls on the same elements are byte-identical.
//
// Elements sharing a type produce repeated selectors in the presentation
// text; the later block wins under normal cascade rules.
func (x Exporter) Export(elements []Element) Artifacts {
	records := x.Snapshot(elements)

	var structure, presentation, behavior strings.Builder
	container := x.Container
	if container == "" {
		container = "app"
	}

	behavior.WriteString("document.addEventListener(\"DOMContentLoaded\", function () {\n")
	fmt.Fprintf(&behavior, "  const app = document.getElementById(%s);\n", jsString(container))

	for i, rec := range records {
		tag := rec.tag()
		decls := declarations(rec.StyleProperties)

		fmt.Fprintf(&structure, "<%s style=\"%s\">%s</%s>\n",
			tag, html.EscapeString(decls), html.EscapeString(rec.Value), tag)

		fmt.Fprintf(&presentation, ".%s{%s}\n", tag, decls)

		v := fmt.Sprintf("%s%d", tag, i)
		fmt.Fprintf(&behavior, "  const %s = document.createElement(%s);\n", v, jsString(tag))
		fmt.Fprintf(&behavior, "  %s.textContent = %s;\n", v, jsString(rec.Value))
		fmt.Fprintf(&behavior, "  %s.classList.add(%s);\n", v, jsString(tag))
		for _, prop := range rec.StyleProperties {
			fmt.Fprintf(&behavior, "  %s.style.setProperty(%s, %s);\n", v, jsString(prop.Name), jsString(prop.Value))
		}
		fmt.Fprintf(&behavior, "  app.appendChild(%s);\n", v)
	}
	behavior.WriteString("});\n")

	return Artifacts{
		Structure:    structure.String(),
		Presentation: presentation.String(),
		Behavior:     behavior.String(),
		Snapshot:     records,
	}
}

func declarations(props StyleProperties) string {
	var b strings.Builder
	for _, prop := range props {
		b.WriteString(prop.Name)
		b.WriteByte(':')
		b.WriteString(prop.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// jsString quotes s as a JavaScript string literal. <, > and & are
// escaped so the script can be inlined in a page.
func jsString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}

// writeArtifacts writes name.html, name.css, name.js and name.json into
// dir and returns the paths written.
func writeArtifacts(dir, name string, a Artifacts) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("no file name given")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	snapshot, err := a.SnapshotJSON()
	if err != nil {
		return nil, err
	}
	files := []struct {
		ext  string
		body []byte
	}{
		{".html", []byte(a.Structure)},
		{".css", []byte(a.Presentation)},
		{".js", []byte(a.Behavior)},
		{".json", snapshot},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, name+f.ext)
		if err := os.WriteFile(path, f.body, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
