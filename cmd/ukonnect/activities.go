package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ukonnect/internal/domain"
	"ukonnect/internal/modules/activity"
)

func newActivitiesCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"aktivitas"},
		Short:   "Plan and track activities",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List activities",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := refreshedScheduler(cmd, get())
				if err != nil {
					return err
				}
				printActivities(cmd.OutOrStdout(), s.Activities())
				return nil
			},
		},
		newActivitySaveCmd(get, false),
		newActivitySaveCmd(get, true),
		&cobra.Command{
			Use:   "complete <id>",
			Short: "Mark an activity as completed",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("id tidak valid: %w", err)
				}
				s, err := refreshedScheduler(cmd, get())
				if err != nil {
					return err
				}
				if err := s.Complete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Aktivitas selesai")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an activity",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("id tidak valid: %w", err)
				}
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				if err := a.scheduler.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Aktivitas dihapus")
				return nil
			},
		},
		newActivityExportCmd(get),
	)
	return cmd
}

func refreshedScheduler(cmd *cobra.Command, a *app) (*activity.Scheduler, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	if err := a.scheduler.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return a.scheduler, nil
}

// newActivitySaveCmd builds "create" or, with update set, "update <id>".
func newActivitySaveCmd(get func() *app, update bool) *cobra.Command {
	var (
		title, day, from, to string
		completed            bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.requireLogin(); err != nil {
				return err
			}
			date, err := time.ParseInLocation(dateLayout, day, time.Local)
			if err != nil {
				return fmt.Errorf("tanggal tidak valid: %w", err)
			}
			start, end, err := activity.BuildWindow(date, from, to)
			if err != nil {
				return err
			}
			in := activity.Input{Title: title, Start: start, End: end, Completed: completed}

			var saved *domain.Activity
			if update {
				id, perr := strconv.ParseInt(args[0], 10, 64)
				if perr != nil {
					return fmt.Errorf("id tidak valid: %w", perr)
				}
				saved, err = a.scheduler.Update(cmd.Context(), id, in)
			} else {
				saved, err = a.scheduler.Create(cmd.Context(), in)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Aktivitas %d tersimpan (%s)\n", saved.ID, saved.Status)
			return nil
		},
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update an activity"
		cmd.Args = cobra.ExactArgs(1)
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "title")
	cmd.Flags().StringVar(&day, "date", time.Now().Format(dateLayout), "day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&to, "end", "", "end time (HH:MM)")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark as already completed")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newActivityExportCmd(get func() *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities as an iCalendar file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := refreshedScheduler(cmd, get())
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := s.ExportICS(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Kalender disimpan ke %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "aktivitas.ics", "output file")
	return cmd
}

func printActivities(w io.Writer, items []domain.Activity) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJUDUL\tMULAI\tSELESAI\tSTATUS")
	for _, a := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			a.ID, a.Title,
			a.Start.Local().Format("2006-01-02 15:04"), a.End.Local().Format("2006-01-02 15:04"),
			a.Status)
	}
	_ = tw.Flush()
}
