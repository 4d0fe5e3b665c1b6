package main

import (
	"fmt"

	"github.com/leca/menudesk/internal/model"
	"github.com/leca/menudesk/internal/upload"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newUploadCmd() *cobra.Command {
	var (
		namespace   string
		concurrency int
		raw         bool
	)
	cmd := &cobra.Command{
		Use:   "upload --namespace <ns> <files...>",
		Short: "Optimize and upload assets to the configured object store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := upload.ValidateNamespace(namespace); err != nil {
				return err
			}
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			opt := a.Optimizer.WithNotifier(printNotifier{w: cmd.ErrOrStderr()})
			refs := make([]*model.UploadedReference, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for i, path := range args {
				g.Go(func() error {
					asset, err := readAsset(path)
					if err != nil {
						return err
					}
					if !raw {
						asset = opt.Optimize(ctx, asset)
					}
					ref, err := a.Uploads.Upload(ctx, asset, namespace)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					refs[i] = ref
					return nil
				})
			}
			err = g.Wait()
			for i, ref := range refs {
				if ref != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[i], ref.URL)
				}
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "storage namespace, e.g. menu-items")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent uploads")
	cmd.Flags().BoolVar(&raw, "raw", false, "upload files without optimizing them")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}
