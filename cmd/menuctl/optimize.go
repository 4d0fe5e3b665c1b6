package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/leca/menudesk/internal/imageproc"
	"github.com/leca/menudesk/internal/model"
	"github.com/spf13/cobra"
)

func newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <in> [out]",
		Short: "Resize and re-encode an image as WebP",
		Long: `Resize an image to fit within 800x800 and re-encode it as lossy WebP.

Without [out] the result is written next to the input with a .webp extension.
Inputs that cannot be optimized are left untouched and the command fails.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := readAsset(args[0])
			if err != nil {
				return err
			}

			opt := imageproc.New(printNotifier{w: cmd.ErrOrStderr()})
			out := opt.Optimize(cmd.Context(), asset)
			if out == asset {
				return fmt.Errorf("%s was not optimized", args[0])
			}

			dst := filepath.Join(filepath.Dir(args[0]), out.Name)
			if len(args) == 2 {
				dst = args[1]
			}
			if err := os.WriteFile(dst, out.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dst, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d -> %d bytes)\n", args[0], dst, asset.Size(), out.Size())
			return nil
		},
	}
}

// readAsset loads a file, taking its media type from the extension or,
// failing that, from its content.
func readAsset(path string) (*model.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = imageproc.SniffContentType(data)
	}
	return &model.Asset{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
