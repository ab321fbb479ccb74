package kometa

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	"gopkg.in/yaml.v3"

	"showdown/internal/config"
	"showdown/internal/fileutil"
	"showdown/internal/logging"
	"showdown/internal/services"
)

// Renderer writes the Kometa collection manifest for a run.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRenderer constructs the manifest renderer. A nil logger discards output.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{cfg: cfg, logger: logging.NewComponentLogger(logger, "kometa")}
}

// Write renders the manifest and atomically replaces the destination file, so
// a Kometa run that starts mid-write never sees a truncated manifest.
func (r *Renderer) Write(manifest Manifest) error {
	data, err := Encode(manifest)
	if err != nil {
		return services.Wrap(services.ErrRender, "kometa", "render", "encode manifest", err)
	}
	if err := fileutil.WriteAtomic(r.cfg.Kometa.Destination, data, 0o644); err != nil {
		return services.Wrap(services.ErrRender, "kometa", "render",
			fmt.Sprintf("write %s", r.cfg.Kometa.Destination), err)
	}

	for _, slug := range manifest.Skipped {
		r.logger.Warn("collection has no owned films, not rendered", logging.String(logging.FieldList, slug))
	}
	r.logger.Info("wrote kometa manifest",
		logging.String("path", r.cfg.Kometa.Destination),
		logging.Int("collections", len(manifest.Collections)),
		logging.Int("deletions", len(manifest.Deleted)))
	return nil
}

// Encode renders the manifest to YAML with the generated-file banner. Mapping
// order follows the manifest, which yaml.Node preserves where plain maps
// would not.
func Encode(manifest Manifest) ([]byte, error) {
	var buf bytes.Buffer
	for _, line := range headerLines(manifest) {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	root := mappingNode()
	collections := mappingNode()
	for _, collection := range manifest.Collections {
		collections.Content = append(collections.Content,
			scalarString(collection.Name),
			collectionNode(collection, manifest.Meta.Label))
	}
	root.Content = append(root.Content, scalarString("collections"), collections)

	if len(manifest.Deleted) > 0 {
		deleted := &yaml.Node{Kind: yaml.SequenceNode}
		for _, name := range manifest.Deleted {
			deleted.Content = append(deleted.Content, scalarString(name))
		}
		root.Content = append(root.Content, scalarString("delete_collections_named"), deleted)
	}

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerLines(manifest Manifest) []string {
	spotlight := manifest.Spotlight
	if spotlight == "" {
		spotlight = "n/a"
	}
	return []string{
		"# Managed by showdown",
		fmt.Sprintf("# Generated on %s", manifest.Meta.GeneratedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("# Run: %d (%s)", manifest.Meta.RunNumber, manifest.Meta.RunID),
		fmt.Sprintf("# Spotlight: %s", spotlight),
		fmt.Sprintf("# Window size: %d (label: %s)", len(manifest.Collections), manifest.Meta.Label),
		"",
	}
}

func collectionNode(collection Collection, label string) *yaml.Node {
	node := mappingNode()
	pair := func(key string, value *yaml.Node) {
		node.Content = append(node.Content, scalarString(key), value)
	}

	ids := &yaml.Node{Kind: yaml.SequenceNode}
	for _, id := range collection.TMDBIDs {
		ids.Content = append(ids.Content, scalarInt(id))
	}

	pair("label", scalarString(label))
	pair("tmdb_movie", ids)
	pair("collection_order", scalarString("custom"))
	pair("sort_title", scalarString(collection.SortTitle))
	pair("sync_mode", scalarString("sync"))
	pair("summary", scalarString(collection.Summary))
	pair("visible_library", scalarBool(true))
	pair("visible_home", scalarBool(collection.VisibleHome))
	pair("visible_shared", scalarBool(collection.VisibleShared))
	return node
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func scalarString(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func scalarInt(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}
}

func scalarBool(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}
}
