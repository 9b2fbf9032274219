package cli

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/usecase/rules"
)

func ContractCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contract",
		Aliases: []string{"aluguel"},
		Short:   "Manage rental contracts",
	}
	cmd.AddCommand(
		contractListCmd(app),
		contractSaveCmd(app),
		contractActivateCmd(app),
		contractTerminateCmd(app),
		contractExpireCmd(app),
		contractDeleteCmd(app),
	)
	return cmd
}

func contractListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Contracts.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(items, contractTable(items))
		},
	}
}

func contractSaveCmd(app *App) *cobra.Command {
	var (
		id, propertyID, tenantID, ownerID int64
		tenant, start, amount             string
		billingDay, months                int
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a pending contract or edit an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var c domain.Contract
			if id != 0 {
				cid, err := positiveID(id)
				if err != nil {
					return err
				}
				if c, err = app.Contracts.Get(ctx, cid); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("property") {
				c.PropertyID = domain.NewID(propertyID)
			}
			if flags.Changed("tenant-id") {
				c.TenantID = domain.NewID(tenantID)
			}
			if flags.Changed("owner") {
				c.OwnerID = domain.NewID(ownerID)
			}
			if flags.Changed("tenant") {
				c.TenantName = tenant
			}
			if flags.Changed("start") {
				t, err := domain.ParseDate(start)
				if err != nil {
					return domain.WrapError(domain.KindValidation, domain.ErrCodeMissingStartDate, "start date must be YYYY-MM-DD", err)
				}
				c.StartDate = t
			}
			if flags.Changed("billing-day") {
				c.BillingDay = billingDay
			}
			if flags.Changed("months") {
				c.DurationMonths = months
			}
			if flags.Changed("amount") {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return domain.WrapError(domain.KindValidation, domain.ErrCodeInvalidAmount, "amount must be a decimal number", err)
				}
				c.MonthlyAmount = d
			}

			saved, _, err := app.Contracts.Save(ctx, c)
			if err != nil {
				return err
			}
			return app.render(saved, contractTable([]domain.Contract{saved}))
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&id, "id", 0, "id of the contract to edit")
	flags.Int64Var(&propertyID, "property", 0, "rented property id")
	flags.Int64Var(&tenantID, "tenant-id", 0, "tenant id")
	flags.StringVar(&tenant, "tenant", "", "tenant name")
	flags.Int64Var(&ownerID, "owner", 0, "owner id")
	flags.StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	flags.IntVar(&billingDay, "billing-day", 0, "day of month installments fall due (1-31)")
	flags.IntVar(&months, "months", 0, "duration in months")
	flags.StringVar(&amount, "amount", "", "monthly amount")
	return cmd
}

func contractActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate [id]",
		Short: "Activate a pending contract and generate its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			act, err := app.Contracts.Activate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.render(act, func(w io.Writer) {
				contractTable([]domain.Contract{act.Contract})(w)
				io.WriteString(w, "\n")
				installmentTable(act.Installments)(w)
			})
		},
	}
}

func contractTerminateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "terminate [id]",
		Short: "End an active contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			term, err := app.Contracts.Terminate(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.render(term, terminationTable([]rules.Termination{term}))
		},
	}
}

func contractExpireCmd(app *App) *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "End every active contract past its end date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when := domain.DateOf(time.Now())
			if today != "" {
				t, err := domain.ParseDate(today)
				if err != nil {
					return err
				}
				when = t
			}
			expired, err := app.Contracts.ExpireDue(cmd.Context(), when)
			if err != nil {
				return err
			}
			return app.render(expired, terminationTable(expired))
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD), defaults to the current date")
	return cmd
}

func contractDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a pending or ended contract and its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.Contracts.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if _, err := app.Contracts.Remove(cmd.Context(), c); err != nil {
				return err
			}
			app.printf("Deleted contract %s\n", id)
			return nil
		},
	}
}

func terminationTable(items []rules.Termination) func(io.Writer) {
	return func(w io.Writer) {
		printRows(w, [2]string{"CONTRACT", "PROPERTY AVAILABLE"})
		for _, t := range items {
			printRows(w, [2]string{t.Contract.ID.String(), yesNo(t.Property.Available)})
		}
	}
}
