package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/photo"
)

func PropertyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "property",
		Aliases: []string{"imovel"},
		Short:   "Manage properties",
	}
	cmd.AddCommand(
		propertyListCmd(app),
		propertyAvailableCmd(app),
		propertySaveCmd(app),
		propertyDeleteCmd(app),
		propertySummaryCmd(app),
		propertyReconcileCmd(app),
	)
	return cmd
}

func propertyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Properties.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(items, propertyTable(items))
		},
	}
}

func propertyAvailableCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List properties open for rent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Properties.ListAvailable(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(items, propertyTable(items))
		},
	}
}

func propertySaveCmd(app *App) *cobra.Command {
	var (
		id          int64
		title       string
		description string
		available   bool
		photoPath   string
		removePhoto bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a property or update an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var current *domain.Property
			if id != 0 {
				pid, err := positiveID(id)
				if err != nil {
					return err
				}
				if current, err = app.Properties.Get(ctx, pid); err != nil {
					return err
				}
			}

			s := app.Properties.Edit(current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				s.Title = title
			}
			if flags.Changed("description") {
				s.Description = description
			}
			if flags.Changed("available") {
				s.Available = available
			}
			if removePhoto {
				s.RemovePhoto()
			}
			if photoPath != "" {
				if err := s.Capture(ctx, photo.FileCapturer{Path: photoPath}); err != nil {
					return err
				}
			}

			saved, _, err := app.Properties.Save(ctx, s)
			if err != nil {
				return err
			}
			return app.render(saved, propertyTable([]domain.Property{saved}))
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&id, "id", 0, "id of the property to update")
	flags.StringVar(&title, "title", "", "property title")
	flags.StringVar(&description, "description", "", "free text description")
	flags.BoolVar(&available, "available", true, "whether the property is open for rent")
	flags.StringVar(&photoPath, "photo", "", "image file to attach")
	flags.BoolVar(&removePhoto, "remove-photo", false, "drop the current photo")
	cmd.MarkFlagsMutuallyExclusive("photo", "remove-photo")
	return cmd
}

func propertyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a property without open contracts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Properties.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if _, err := app.Properties.Remove(cmd.Context(), *p); err != nil {
				return err
			}
			app.printf("Deleted property %s\n", id)
			return nil
		},
	}
}

func propertySummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count properties by occupancy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Properties.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(s, func(w io.Writer) {
				printRows(w,
					[2]string{"TOTAL", itoa(s.Total)},
					[2]string{"RENTED", itoa(s.Rented)},
					[2]string{"AVAILABLE", itoa(s.Available)},
					[2]string{"UNAVAILABLE", itoa(s.Unavailable)},
				)
			})
		},
	}
}

func propertyReconcileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Fix availability flags that disagree with active contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixed, err := app.Properties.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(fixed, propertyTable(fixed))
		},
	}
}
