package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/hairstrand"
	"github.com/unkn0wn-root/hairstrand/geom"
	"github.com/unkn0wn-root/hairstrand/scene"
)

func newImportCmd() *SubCommand {
	sc := &SubCommand{EnvPrefix: envPrefix}
	sc.Cmd = &cobra.Command{
		Use:   "import <file.data>...",
		Short: "Convert hairstyles to OBJ line meshes",
		Long: `Import decodes each hairstyle, names the object after the file, applies the
dataset's axis correction (+90 degrees about X) and writes <name>.obj next to
the source, or into --out when given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, sc, args)
		},
	}
	flags := sc.Cmd.Flags()
	flags.String("out", "", "Output directory; defaults to each source's directory.")
	flags.String("collection", scene.DefaultCollection, "Collection the imported objects are linked into.")
	return sc
}

func runImport(cmd *cobra.Command, sc *SubCommand, args []string) error {
	ctx := cmd.Context()
	e, err := setup(sc.Conf, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close(ctx)

	outDir := sc.Conf.GetString("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	sn := scene.New()
	for _, path := range args {
		g, err := e.loader.LoadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		obj := scene.Import(sn, path, g, scene.ImportOptions{Collection: sc.Conf.GetString("collection")})

		dir := outDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		dst := filepath.Join(dir, obj.Name+".obj")
		if err := writeOBJFile(dst, obj); err != nil {
			return err
		}

		s := geom.Summarize(obj.Geometry)
		e.log.Info("imported hairstyle", hairstrand.Fields{
			"object":     obj.Name,
			"collection": obj.Collection,
			"strands":    s.Strands,
			"vertices":   s.Vertices,
			"edges":      s.Edges,
			"out":        dst,
		})
		fmt.Fprintln(cmd.OutOrStdout(), dst)
	}
	return nil
}

func writeOBJFile(path string, obj *scene.Object) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := scene.WriteOBJ(f, obj); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
