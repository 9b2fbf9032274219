package cli

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fastygo/rentals/domain"
)

func InstallmentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "installment",
		Aliases: []string{"parcela"},
		Short:   "Track installments and payments",
	}
	cmd.AddCommand(
		installmentListCmd(app),
		installmentDueCmd(app),
		installmentSaveCmd(app),
		installmentReceiveCmd(app),
		installmentDeleteCmd(app),
		installmentSummaryCmd(app),
	)
	return cmd
}

func installmentListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all installments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Installments.List(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(items, installmentTable(items))
		},
	}
}

func installmentDueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List installments close to their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Installments.ListDue(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(items, installmentTable(items))
		},
	}
}

func installmentSaveCmd(app *App) *cobra.Command {
	var (
		id, contractID, propertyID int64
		due, amount                string
		paid                       bool
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Record a manual installment or edit an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var i domain.Installment
			if id != 0 {
				iid, err := positiveID(id)
				if err != nil {
					return err
				}
				if i, err = findInstallment(cmd, app, iid); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("contract") {
				i.ContractID = domain.NewID(contractID)
			}
			if flags.Changed("property") {
				i.PropertyID = domain.NewID(propertyID)
			}
			if flags.Changed("due") {
				t, err := domain.ParseDate(due)
				if err != nil {
					return domain.WrapError(domain.KindValidation, domain.ErrCodeMissingDueDate, "due date must be YYYY-MM-DD", err)
				}
				i.DueDate = t
			}
			if flags.Changed("amount") {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return domain.WrapError(domain.KindValidation, domain.ErrCodeInvalidAmount, "amount must be a decimal number", err)
				}
				i.Amount = d
			}
			if flags.Changed("paid") {
				i.Status = domain.InstallmentOpen
				if paid {
					i.Status = domain.InstallmentPaid
				}
			}

			saved, _, err := app.Installments.Save(ctx, i)
			if err != nil {
				return err
			}
			return app.render(saved, installmentTable([]domain.Installment{saved}))
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&id, "id", 0, "id of the installment to edit")
	flags.Int64Var(&contractID, "contract", 0, "related contract id")
	flags.Int64Var(&propertyID, "property", 0, "property id")
	flags.StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	flags.StringVar(&amount, "amount", "", "amount")
	flags.BoolVar(&paid, "paid", false, "mark the installment as paid")
	return cmd
}

func installmentReceiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "receive [id]",
		Short: "Record payment of an open installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			paid, err := app.Installments.Receive(cmd.Context(), id)
			if err != nil {
				return err
			}
			return app.render(paid, installmentTable([]domain.Installment{paid}))
		},
	}
}

func installmentDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a manually recorded installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			i, err := findInstallment(cmd, app, id)
			if err != nil {
				return err
			}
			if _, err := app.Installments.Remove(cmd.Context(), i); err != nil {
				return err
			}
			app.printf("Deleted installment %s\n", id)
			return nil
		},
	}
}

func installmentSummaryCmd(app *App) *cobra.Command {
	var today string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total open, paid and overdue installments",
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
			s, err := app.Installments.Summary(cmd.Context(), when)
			if err != nil {
				return err
			}
			return app.render(s, func(w io.Writer) {
				printRows(w,
					[2]string{"OPEN", itoa(s.Open) + "\t" + money(s.OpenAmount)},
					[2]string{"PAID", itoa(s.Paid) + "\t" + money(s.PaidAmount)},
					[2]string{"OVERDUE", itoa(s.Overdue) + "\t" + money(s.OverdueAmount)},
				)
			})
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD), defaults to the current date")
	return cmd
}

func findInstallment(cmd *cobra.Command, app *App, id domain.ID) (domain.Installment, error) {
	items, err := app.Installments.List(cmd.Context())
	if err != nil {
		return domain.Installment{}, err
	}
	for _, i := range items {
		if i.ID == id {
			return i, nil
		}
	}
	return domain.Installment{}, domain.ErrInstallmentNotFound
}
