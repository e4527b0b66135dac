package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/unkn0wn-root/hairstrand/scene"
)

func newPreviewCmd() *SubCommand {
	sc := &SubCommand{EnvPrefix: envPrefix}
	sc.Cmd = &cobra.Command{
		Use:   "preview <file.data>",
		Short: "Render a scatter preview of a hairstyle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(sc.Conf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(ctx)

			path := args[0]
			g, err := e.loader.LoadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("preview %s: %w", path, err)
			}
			obj := scene.Import(scene.New(), path, g, scene.ImportOptions{})

			dst := sc.Conf.GetString("out")
			if dst == "" {
				dst = filepath.Join(filepath.Dir(path), obj.Name+".png")
			}
			size := vg.Length(sc.Conf.GetFloat64("size")) * vg.Inch
			err = scene.RenderPreview(obj, dst, scene.PreviewOptions{
				Plane:  scene.Plane(sc.Conf.GetString("plane")),
				Width:  size,
				Height: size,
				Stride: sc.Conf.GetInt("stride"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
	flags := sc.Cmd.Flags()
	flags.String("out", "", "Image path; the extension picks the format. Defaults to <name>.png next to the source.")
	flags.String("plane", string(scene.PlaneXZ), "Projection plane: xy, xz or yz.")
	flags.Int("stride", 4, "Plot every n-th vertex.")
	flags.Float64("size", 6, "Image width and height in inches.")
	return sc
}
