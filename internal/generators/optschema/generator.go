// Package optschema generates the JSON Schema set of the material database
// from its entity definitions.
//
// The same plan serves every variant. A variant picks the target flags, the
// reference strategy, how the entity-or-enum types resolve and which steps
// of the plan it emits. Every entity of those steps must be marked for the
// variant's target.
package optschema

import (
	"fmt"

	"github.com/simonhull/firebird-suite/quill/internal/emit"
	"github.com/simonhull/firebird-suite/quill/internal/fragment"
	"github.com/simonhull/firebird-suite/quill/internal/logger"
	"github.com/simonhull/firebird-suite/quill/internal/schema"
	"github.com/simonhull/firebird-suite/quill/internal/synth"
	"github.com/simonhull/firebird-suite/quill/internal/track"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

// Options configures a Generator.
type Options struct {
	Variant Variant
	Emit    emit.Options
	Logger  logger.Logger
}

// Generator emits the schema files of one variant.
type Generator struct {
	catalog *schema.Catalog
	opts    Options
	log     logger.Logger
}

// New creates a generator over catalog.
func New(catalog *schema.Catalog, opts Options) *Generator {
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Generator{
		catalog: catalog,
		opts:    opts,
		log:     log.WithFields(logger.F("variant", opts.Variant.Name)),
	}
}

// step is one schema file of the plan.
type step struct {
	basename string
	document string
	entity   string
	inherit  synth.Inherit
	slug     bool
	override func() *fragment.Object
}

var plan = []step{
	{basename: "material", document: "materials", entity: "Material", slug: true},
	{basename: "material_type", document: "materials", entity: "MaterialType"},
	{basename: "fff_material_properties", document: "materials", entity: "FFFMaterialProperties", inherit: synth.InheritSkip},
	{basename: "sla_material_properties", document: "materials", entity: "SLAMaterialProperties", inherit: synth.InheritSkip},
	{basename: "material_properties", document: "materials", entity: "MaterialProperties", override: propertiesOverride},
	{basename: "brand", document: "brands", entity: "Brand", slug: true},
	{basename: "material_package", document: "packaging", entity: "MaterialPackage", slug: true, override: func() *fragment.Object {
		return classOverride("material_package")
	}},
	{basename: "fff_material_package", document: "packaging", entity: "FFFMaterialPackage", inherit: synth.InheritSkip},
	{basename: "sla_material_package", document: "packaging", entity: "SLAMaterialPackage", inherit: synth.InheritSkip},
	{basename: "material_container", document: "packaging", entity: "MaterialContainer", slug: true, override: func() *fragment.Object {
		return classOverride("material_container")
	}},
	{basename: "fff_material_container", document: "packaging", entity: "FFFMaterialContainer", inherit: synth.InheritSkip},
	{basename: "sla_material_container", document: "packaging", entity: "SLAMaterialContainer", inherit: synth.InheritSkip},
	{basename: "sla_material_container_connector", document: "packaging", entity: "SLAMaterialContainerConnector"},
	{basename: "material_color", document: "materials", entity: "MaterialColor"},
}

// run holds the state of a single Generate call.
type run struct {
	catalog *schema.Catalog
	variant Variant
	log     logger.Logger
	reg     *types.Registry
	synth   *synth.Synthesizer
	emitter *emit.Emitter
	tracker *track.Tracker
}

// Generate runs the plan and returns the emitter holding every document
// in emission order.
func (g *Generator) Generate() (*emit.Emitter, error) {
	v := g.opts.Variant
	if err := v.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		catalog: g.catalog,
		variant: v,
		log:     g.log,
		reg:     types.NewRegistry(types.Options{PatternKey: v.PatternKey}),
		emitter: emit.New(g.opts.Emit, g.log),
		tracker: track.New(),
	}
	r.synth = synth.New(r.reg, g.catalog, v.Target)
	r.registerDomain()

	if v.References == types.ReferenceUnion {
		if err := r.emit(types.UUIDReference, uuidReference(), nil); err != nil {
			return nil, err
		}
		if err := r.emit(types.SlugReference, slugReference(), nil); err != nil {
			return nil, err
		}
	}

	for _, s := range plan {
		if !v.Emits(s.basename) {
			continue
		}
		if err := r.step(s); err != nil {
			return nil, fmt.Errorf("generating %s: %w", emit.FileName(s.basename), err)
		}
	}

	if err := r.checkConsumed(); err != nil {
		return nil, err
	}
	return r.emitter, nil
}

func (r *run) step(s step) error {
	entity, err := r.catalog.Entity(s.document, s.entity)
	if err != nil {
		return err
	}
	core, err := r.synthesize(entity, synth.Options{Inherit: s.inherit})
	if err != nil {
		return err
	}
	if s.slug {
		core.Object("properties").Set("slug", slugProperty())
	}

	var override *fragment.Object
	if s.override != nil {
		override = s.override()
	}
	return r.emit(s.basename, core, override)
}

// emit claims basename before handing the document to the emitter.
func (r *run) emit(basename string, core, override *fragment.Object) error {
	if err := r.tracker.Claim(track.Artifact, basename); err != nil {
		return err
	}
	_, err := r.emitter.Emit(basename, core, override)
	return err
}

func (r *run) synthesize(entity *schema.Entity, opts synth.Options) (*fragment.Object, error) {
	r.tracker.Touch(track.Entity, qualified(entity))
	return r.synth.Synthesize(entity, opts)
}

// checkConsumed fails when an entity marked for the target was never
// synthesized, neither as a file nor embedded in one.
func (r *run) checkConsumed() error {
	var marked []string
	for _, entity := range r.catalog.Entities() {
		if entity != nil && entity.Flag(r.variant.Target.Filter) {
			marked = append(marked, qualified(entity))
		}
	}
	return r.tracker.Check(track.Entity, marked)
}

func inPlan(basename string) bool {
	for _, s := range plan {
		if s.basename == basename {
			return true
		}
	}
	return false
}

func qualified(e *schema.Entity) string {
	return e.Document() + "/" + e.Name
}
