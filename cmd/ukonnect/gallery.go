package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ukonnect/internal/domain"
	"ukonnect/internal/modules/gallery"
)

var weekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

func newGalleryCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gallery",
		Aliases: []string{"galeri"},
		Short:   "Browse and upload photos",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List photos",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := get()
				if err := a.requireLogin(); err != nil {
					return err
				}
				if err := a.gallery.Refresh(cmd.Context()); err != nil {
					return err
				}
				printPhotos(cmd.OutOrStdout(), a.gallery.Photos())
				return nil
			},
		},
		newGalleryAddCmd(get),
		newGalleryEditCmd(get),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete one of your photos",
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
				return a.gallery.DeletePhoto(cmd.Context(), id)
			},
		},
	)
	return cmd
}

type uploadFlags struct {
	file, caption, date string
}

func (f *uploadFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "image file")
	cmd.Flags().StringVarP(&f.caption, "caption", "c", "", "caption")
	cmd.Flags().StringVar(&f.date, "date", time.Now().Format(dateLayout), "photo date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("file")
}

func (f *uploadFlags) upload() (gallery.Upload, error) {
	content, err := os.ReadFile(f.file)
	if err != nil {
		return gallery.Upload{}, err
	}
	day, err := time.ParseInLocation(dateLayout, f.date, time.Local)
	if err != nil {
		return gallery.Upload{}, fmt.Errorf("tanggal tidak valid: %w", err)
	}
	return gallery.Upload{
		Content:  content,
		FileName: filepath.Base(f.file),
		Caption:  f.caption,
		Date:     f.date,
		Weekday:  weekdays[day.Weekday()],
	}, nil
}

func newGalleryAddCmd(get func() *app) *cobra.Command {
	var f uploadFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.requireLogin(); err != nil {
				return err
			}
			up, err := f.upload()
			if err != nil {
				return err
			}
			return a.gallery.AddPhoto(cmd.Context(), up)
		},
	}
	f.bind(cmd)
	return cmd
}

func newGalleryEditCmd(get func() *app) *cobra.Command {
	var f uploadFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace one of your photos",
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
			if err := a.gallery.Refresh(cmd.Context()); err != nil {
				return err
			}
			var old *domain.Photo
			for _, p := range a.gallery.Photos() {
				if p.ID == id {
					old = &p
					break
				}
			}
			if old == nil {
				return fmt.Errorf("foto %d tidak ditemukan", id)
			}
			up, err := f.upload()
			if err != nil {
				return err
			}
			return a.gallery.EditPhoto(cmd.Context(), *old, up)
		},
	}
	f.bind(cmd)
	return cmd
}

func printPhotos(w io.Writer, photos []domain.Photo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTANGGAL\tHARI\tKETERANGAN\tURL")
	for _, p := range photos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Date, p.Weekday, p.Caption, p.ImageURL)
	}
	_ = tw.Flush()
}
