package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ukonnect/internal/domain"
	"ukonnect/internal/modules/attendance"
)

func newAttendCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attend",
		Aliases: []string{"absensi"},
		Short:   "Record attendance from QR payloads",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "scan <payload>",
			Short: "Record a scanned QR payload",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				rec, err := a.recorder.Scan(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", rec.Type, rec.Date, rec.Time, rec.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "flush",
			Short: "Deliver records still waiting in the outbox",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				n, err := a.recorder.Flush(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d absensi terkirim\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "Show attendance history with a summary",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				if err := a.recorder.Refresh(cmd.Context()); err != nil {
					return err
				}
				printAttendance(cmd.OutOrStdout(), a.recorder.History(), a.recorder.Summary())
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an attendance record",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				return a.recorder.Delete(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

func printAttendance(w io.Writer, records []domain.AttendanceRecord, sum attendance.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTANGGAL\tJAM\tTIPE\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Time, r.Type, r.Status)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nTotal %d, hadir %d (%d%%)\n", sum.Total, sum.Present, sum.Percent)
}
