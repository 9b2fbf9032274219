package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/photo"
)

func PhotoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Inspect the photo pipeline",
	}
	cmd.AddCommand(photoEncodeCmd(app))
	return cmd
}

func photoEncodeCmd(app *App) *cobra.Command {
	var (
		maxWidth int
		quality  int
		dataURI  bool
	)
	cmd := &cobra.Command{
		Use:         "encode [file]",
		Short:       "Encode an image the way property photos are stored",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			payload, err := photo.NewEncoder(maxWidth, quality).Encode(f)
			if err != nil {
				return domain.WrapError(domain.KindCapture, domain.ErrCodeEncodeFailed, domain.ErrEncodeFailed.Message, err)
			}
			payload.Filename = filepath.Base(args[0])

			if app.format == "json" {
				return app.render(payload, nil)
			}
			if dataURI {
				app.printf("%s\n", payload.Displayable().URI)
				return nil
			}
			app.printf("%s %dx%d %s (%d base64 bytes)\n",
				payload.Filename, payload.Width, payload.Height, payload.MediaType, len(payload.Data))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&maxWidth, "max-width", photo.DefaultMaxWidth, "bound for the larger side in pixels")
	flags.IntVar(&quality, "quality", photo.DefaultQuality, "JPEG quality (1-100)")
	flags.BoolVar(&dataURI, "data-uri", false, "print the data URI instead of a summary")
	return cmd
}
