package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lildude/mapty/internal/client"
	"github.com/lildude/mapty/internal/model"
	"github.com/lildude/mapty/internal/summary"
	"github.com/spf13/cobra"
)

type clientFunc func() (*client.Client, error)

func newListCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			records, err := c.ListWorkouts(cmd.Context())
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func newAddCmd(newClient clientFunc) *cobra.Command {
	var flags workoutFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a workout at --lat/--lng, or at the last map click",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			r, err := c.CreateWorkout(cmd.Context(), flags.form(cmd.Flags()))
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), []model.Record{r})
			return nil
		},
	}
	flags.register(cmd.Flags(), true)
	return cmd
}

func newEditCmd(newClient clientFunc) *cobra.Command {
	var flags workoutFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the type, distance, duration, cadence or elevation of a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			data := flags.form(cmd.Flags())
			if !cmd.Flags().Changed("type") {
				// keep the workout's current type
				data.Type = ""
			}
			r, err := c.EditWorkout(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), []model.Record{r})
			return nil
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func newDeleteCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete workouts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := c.DeleteWorkout(cmd.Context(), id); err != nil {
					return fmt.Errorf("deleting %s: %w", id, err)
				}
			}
			return nil
		},
	}
}

func newPanCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pan ID",
		Short: "Centre the map on a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.PanTo(cmd.Context(), args[0])
		},
	}
}

func newResetCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return c.Reset(cmd.Context())
		},
	}
}

func newSummaryCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show yearly totals per workout type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			totals, err := c.Summary(cmd.Context())
			if err != nil {
				return err
			}
			printTotals(cmd.OutOrStdout(), totals)
			return nil
		},
	}
}

func printRecords(out io.Writer, records []model.Record) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tDISTANCE\tDURATION\tMETRIC\tEXTRA")
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		t := model.WorkoutType(r.Type)
		extra := fmt.Sprintf("%g spm", r.CadenceSpm)
		if t == model.Cycling {
			extra = fmt.Sprintf("%g m", r.ElevationGainM)
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%.2f km\t%.2f min\t%.2f %s\t%s\n",
			r.ID, t.Icon(), r.Label, r.DistanceKm, r.DurationMin, r.DerivedMetric, t.MetricUnit(), extra)
	}
	tw.Flush()
}

func printTotals(out io.Writer, totals []summary.Total) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tTYPE\tCOUNT\tDISTANCE\tDURATION\tELEVATION")
	for _, t := range totals {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f km\t%.2f min\t%.0f m\n",
			t.Year, t.Type, t.Count, t.DistanceKm, t.DurationMin, t.TotalElevationGain)
	}
	tw.Flush()
}
