package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ukonnect/internal/domain"
	"ukonnect/internal/modules/loan"
)

const dateLayout = "2006-01-02"

var errLoanClosed = errors.New("peminjaman sudah dikembalikan")

func newLoansCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loans",
		Aliases: []string{"peminjaman"},
		Short:   "Borrow and return equipment",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "equipment",
			Short: "List equipment with available stock",
			RunE: func(cmd *cobra.Command, _ []string) error {
				l, err := refreshedLedger(cmd, get())
				if err != nil {
					return err
				}
				printEquipment(cmd.OutOrStdout(), l.Equipment())
				return nil
			},
		},
		newLoansListCmd(get),
		newLoanCreateCmd(get),
		newLoanReturnCmd(get),
		newLoanCancelCmd(get),
		newLoanDeleteCmd(get),
		newLoanExportCmd(get),
	)
	return cmd
}

func refreshedLedger(cmd *cobra.Command, a *app) (*loan.Ledger, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	if err := a.ledger.RefreshAll(cmd.Context()); err != nil {
		return nil, errors.New(a.ledger.Err())
	}
	return a.ledger, nil
}

func newLoansListCmd(get func() *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := refreshedLedger(cmd, get())
			if err != nil {
				return err
			}
			var loans []domain.Loan
			switch status {
			case "active":
				loans = l.ActiveLoans()
			case "completed":
				loans = l.CompletedLoans()
			default:
				loans = l.History()
			}
			printLoans(cmd.OutOrStdout(), loans)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, active or completed")
	return cmd
}

func newLoanCreateCmd(get func() *app) *cobra.Command {
	var (
		equipmentID string
		qty         int
		from, until string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Borrow equipment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := refreshedLedger(cmd, get())
			if err != nil {
				return err
			}
			start, err := time.ParseInLocation(dateLayout, from, time.Local)
			if err != nil {
				return fmt.Errorf("tanggal mulai tidak valid: %w", err)
			}
			end, err := time.ParseInLocation(dateLayout, until, time.Local)
			if err != nil {
				return fmt.Errorf("tanggal selesai tidak valid: %w", err)
			}

			created, err := l.CreateLoan(cmd.Context(), loan.CreateLoanInput{
				EquipmentID: equipmentID,
				Quantity:    qty,
				StartAt:     start,
				EndAt:       end,
			})
			if err != nil {
				return errors.New(l.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Peminjaman %s dibuat: %d x %s\n", created.ID, created.Quantity, created.EquipmentName)
			return nil
		},
	}
	today := time.Now().Format(dateLayout)
	cmd.Flags().StringVar(&equipmentID, "equipment", "", "equipment id")
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity")
	cmd.Flags().StringVar(&from, "from", today, "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", today, "end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("equipment")
	return cmd
}

func newLoanReturnCmd(get func() *app) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Return part or all of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, target, err := findLoan(cmd, get(), args[0])
			if err != nil {
				return err
			}
			if !target.IsActive() {
				return errLoanClosed
			}
			if qty == 0 {
				qty = target.Quantity
			}
			if err := l.ReturnLoan(cmd.Context(), target, qty); err != nil {
				return errors.New(l.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d x %s dikembalikan\n", qty, target.EquipmentName)
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 0, "quantity to return (default: everything)")
	return cmd
}

func newLoanCancelCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <loan-id>",
		Short: "Return the whole remaining quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, target, err := findLoan(cmd, get(), args[0])
			if err != nil {
				return err
			}
			if !target.IsActive() {
				return errLoanClosed
			}
			if err := l.CancelLoan(cmd.Context(), target); err != nil {
				return errors.New(l.Err())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Peminjaman dibatalkan")
			return nil
		},
	}
}

func newLoanDeleteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <loan-id>",
		Short: "Delete a loan from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, target, err := findLoan(cmd, get(), args[0])
			if err != nil {
				return err
			}
			if err := l.DeleteLoan(cmd.Context(), target); err != nil {
				return errors.New(l.Err())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Peminjaman dihapus")
			return nil
		},
	}
}

func newLoanExportCmd(get func() *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loan history as an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := refreshedLedger(cmd, get())
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := l.ExportXLSX(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Riwayat disimpan ke %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "peminjaman.xlsx", "output file")
	return cmd
}

func findLoan(cmd *cobra.Command, a *app, id string) (*loan.Ledger, domain.Loan, error) {
	l, err := refreshedLedger(cmd, a)
	if err != nil {
		return nil, domain.Loan{}, err
	}
	for _, it := range l.History() {
		if it.ID == id {
			return l, it, nil
		}
	}
	return nil, domain.Loan{}, fmt.Errorf("peminjaman %s tidak ditemukan", id)
}

func printEquipment(w io.Writer, items []domain.Equipment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tALAT\tTERSEDIA\tTOTAL")
	for _, e := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", e.ID, e.Name, e.Available, e.Total)
	}
	_ = tw.Flush()
}

func printLoans(w io.Writer, loans []domain.Loan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tALAT\tJUMLAH\tSTATUS\tMULAI\tSELESAI")
	for _, l := range loans {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.EquipmentName, l.Quantity, l.Status,
			l.StartAt.Local().Format(dateLayout), l.EndAt.Local().Format(dateLayout))
	}
	_ = tw.Flush()
}
