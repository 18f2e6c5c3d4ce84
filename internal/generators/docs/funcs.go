package docs

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/simonhull/firebird-suite/quill/internal/schema"
)

// funcs are the template functions available to documentation pages.
func (r *run) funcs() template.FuncMap {
	return template.FuncMap{
		"repo":                r.repo,
		"plantuml":            r.plantuml,
		"plantumlCommon":      r.plantumlCommon,
		"plantumlEntity":      r.plantumlEntity,
		"plantumlEntityRef":   r.plantumlEntityRef,
		"projectsCommon":      r.projectsCommon,
		"classDocumentation":  r.classDocumentation,
		"enumTable":           r.enumTable,
		"materialTagTable":    r.materialTagTable,
		"enumColumns":         func() []Column { return EnumColumns },
		"materialTypeColumns": func() []Column { return MaterialTypeColumns },
		"materialTagCategoryColumns": func() []Column {
			return MaterialTagCategoryColumns
		},
		"materialCertificationColumns": func() []Column {
			return MaterialCertificationColumns
		},
	}
}

func (r *run) repo() string {
	return r.g.opts.Repo
}

func (r *run) footer(kind, file, link string) string {
	return fmt.Sprintf("*The %s was automatically generated from [`%s`](%s/blob/main/%s/%s)*\n\n",
		kind, file, r.g.opts.Repo, link, file)
}

// plantuml renders plantuml/<file>, queues it for SVG rendering and
// returns the Markdown embedding the image.
func (r *run) plantuml(file string) (string, error) {
	if r.diagram != "" {
		return "", fmt.Errorf("plantuml %s: nested inside %s", file, r.diagram)
	}

	r.diagram = strings.TrimSuffix(file, filepath.Ext(file))
	content, err := r.renderer.RenderFile(filepath.Join(r.g.opts.SourceDir, "plantuml", file), nil)
	r.diagram = ""
	if err != nil {
		return "", err
	}

	r.diagrams = append(r.diagrams, r.write(file, content))

	image := strings.TrimSuffix(file, filepath.Ext(file)) + ".svg"
	return fmt.Sprintf(`<img src="%s">`, image) + r.footer("graph", file, r.g.opts.SourceLink), nil
}

// plantumlCommon renders plantuml/_common.plantuml once per run.
func (r *run) plantumlCommon() (string, error) {
	if r.common == nil {
		content, err := r.renderer.RenderFile(filepath.Join(r.g.opts.SourceDir, "plantuml", "_common.plantuml"), nil)
		if err != nil {
			return "", err
		}
		s := string(content)
		r.common = &s
	}
	return *r.common, nil
}

// projectsCommon is the PlantUML legend of project stereotypes.
func (r *run) projectsCommon() string {
	var b strings.Builder
	b.WriteString("legend\n")
	for _, p := range r.g.opts.Projects {
		fmt.Fprintf(&b, "<<%s>> $%s %s\n", p.Stereotype, p.Key, p.Description)
	}
	b.WriteString("end legend\n")
	return b.String()
}

func (r *run) plantumlEntityRef(file, class string) (string, error) {
	entity, err := r.g.catalog.Entity(file, class)
	if err != nil {
		return "", err
	}
	return r.entityRef(entity), nil
}

func (r *run) entityRef(e *schema.Entity) string {
	var stereotypes strings.Builder
	for _, p := range r.g.opts.Projects {
		if e.Flag(p.Key) {
			fmt.Fprintf(&stereotypes, "<<%s>>", p.Stereotype)
		}
	}
	return fmt.Sprintf("entity %s %s\n", e.Name, stereotypes.String())
}

// plantumlEntity renders the entity block of class, which must be declared
// in the document named like the PlantUML template being rendered.
func (r *run) plantumlEntity(class string, customInheritance ...bool) (string, error) {
	if r.diagram == "" {
		return "", fmt.Errorf("plantumlEntity %s: only available in PlantUML templates", class)
	}
	entity, err := r.g.catalog.Entity(r.diagram, class)
	if err != nil {
		return "", err
	}
	if err := r.tracker.Claim(kindDiagram, qualified(entity)); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(r.entityRef(entity))
	b.WriteString("{\n")
	for i := range entity.Fields {
		field := &entity.Fields[i]
		if field.PrimaryKey {
			b.WriteString("*")
		}
		// Method names keep their parentheses; plain fields are marked so a
		// type like set(T) is not read as a method.
		if !field.IsDerived() {
			b.WriteString("{field} ")
		}
		b.WriteString(field.Name)
		if field.Type != "" {
			b.WriteString(": " + field.Type)
		}
		for _, p := range r.g.opts.Projects {
			if field.Bool(p.Key, false) {
				b.WriteString(" $" + p.Key)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	custom := len(customInheritance) > 0 && customInheritance[0]
	if !custom && entity.Inherits != "" {
		fmt.Fprintf(&b, "%s -u-|> %s", entity.Name, entity.Inherits)
	}
	return b.String(), nil
}

// classDocumentation renders the heading, projects, description and field
// table of class.
func (r *run) classDocumentation(file, class string) (string, error) {
	entity, err := r.g.catalog.Entity(file, class)
	if err != nil {
		return "", err
	}
	if err := r.tracker.Claim(kindClassDoc, qualified(entity)); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", entity.Name)

	var projects []string
	for _, p := range r.g.opts.Projects {
		if entity.Flag(p.Key) {
			projects = append(projects, p.Stereotype)
		}
	}
	if len(projects) > 0 {
		fmt.Fprintf(&b, "> Used in: %s\n\n", strings.Join(projects, ", "))
	}

	if !entity.Description.IsZero() {
		b.WriteString(DefaultTransform(entity.Description.Value()))
		b.WriteString("\n\n")
	}

	table, err := GenerateTable(fieldRows(entity), ClassColumns, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", entity.Name, err)
	}
	b.WriteString(table)
	b.WriteString(r.footer("documentation", yamlName(entity.Document()), r.g.opts.DataLink))
	return b.String(), nil
}

// enumTable renders every item of an enum document, deprecated ones
// included. Without columns, EnumColumns is used.
func (r *run) enumTable(file string, columns ...[]Column) (string, error) {
	enum, err := r.g.catalog.Enum(file)
	if err != nil {
		return "", err
	}
	if err := r.tracker.Claim(kindTable, enum.Name); err != nil {
		return "", err
	}

	cols := EnumColumns
	if len(columns) > 0 {
		cols = columns[0]
	}
	table, err := GenerateTable(itemRows(enum), cols, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", enum.Name, err)
	}
	return table + r.footer("table", yamlName(enum.Name), r.g.opts.DataLink), nil
}

// materialTagTable renders the active tags as an HTML table grouped by
// category.
func (r *run) materialTagTable() (string, error) {
	tags, err := r.g.catalog.Enum("material_tags")
	if err != nil {
		return "", err
	}
	categories, err := r.g.catalog.Enum("material_tag_categories")
	if err != nil {
		return "", err
	}
	if err := r.tracker.Claim(kindTable, tags.Name); err != nil {
		return "", err
	}

	known := make(map[string]bool, len(categories.Items))
	for _, c := range categories.Items {
		known[c.Name] = true
	}
	active := tags.Active()
	for _, tag := range active {
		if category := extraString(tag, "category"); !known[category] {
			return "", fmt.Errorf("%w: tag %s category %q is not in %s", ErrUnknownCategory, tag.Name, category, yamlName(categories.Name))
		}
	}

	var b strings.Builder
	b.WriteString("<table>")
	b.WriteString("<tr><th>ID</th><th>Name</th><th>Display name</th><th>Info</th>")

	for _, category := range categories.Items {
		fmt.Fprintf(&b, "<tr><th colspan='4' align='left'>%s %s</th></tr>", extraString(category, "emoji"), category.DisplayName)

		for _, tag := range active {
			if extraString(tag, "category") != category.Name {
				continue
			}
			key, _ := tag.Get("key")

			b.WriteString("<tr>")
			fmt.Fprintf(&b, "<td>%s</td>", DefaultTransform(key))
			fmt.Fprintf(&b, "<td><code>%s</code></td>", tag.Name)
			fmt.Fprintf(&b, "<td>%s</td>", tag.DisplayName)
			b.WriteString("<td>")
			b.WriteString(strings.Join(tagInfo(tag), "<br>"))
			b.WriteString("</td></tr>")
		}
	}

	b.WriteString("</table>\n\n")
	b.WriteString(r.footer("documentation", yamlName(tags.Name), r.g.opts.DataLink))
	return b.String(), nil
}

// tagInfo lists a tag's description lines followed by its implications.
func tagInfo(tag schema.EnumItem) []string {
	var lines []string
	if tag.Description.List {
		lines = append(lines, tag.Description.Lines...)
	} else if desc := tag.Description.String(); desc != "" {
		lines = append(lines, desc)
	}

	for _, rel := range []struct{ key, label string }{{"implies", "Implies"}, {"hints", "Hints"}} {
		names := extraStrings(tag, rel.key)
		if len(names) == 0 {
			continue
		}
		for i, name := range names {
			names[i] = "<code>" + name + "</code>"
		}
		lines = append(lines, rel.label+" "+strings.Join(names, ", "))
	}
	return lines
}

func extraString(item schema.EnumItem, key string) string {
	v, ok := item.Get(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func extraStrings(item schema.EnumItem, key string) []string {
	v, _ := item.Get(key)
	list, _ := v.([]any)
	names := make([]string, 0, len(list))
	for _, name := range list {
		names = append(names, fmt.Sprint(name))
	}
	return names
}
