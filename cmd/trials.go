// =============================================================================
// Presentielijst - Trials Command
// =============================================================================
//
// Manages trial participants: people who join a lesson for a few trial
// sessions and are not in the member export yet. They are stored in the
// store file and added below the members of their lesson on every list.
//
// COMMAND USAGE:
//   presentielijst trials add --lesson L01 --name "Tom" [--phone ...] [--count 1]
//   presentielijst trials list [--lesson L01]
//   presentielijst trials update <id> [--lesson ...] [--name ...] [--phone ...] [--count ...]
//   presentielijst trials remove <id>
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/presentielijst/internal/trials"
	"github.com/ginjaninja78/presentielijst/internal/types"
)

var trialFlags struct {
	lesson string
	name   string
	phone  string
	count  int
}

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Manage trial participants",
}

var trialsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a trial participant for a lesson",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, registry, err := openRegistry()
		if err != nil {
			return err
		}

		trial, err := trials.New(trialFlags.lesson, trialFlags.name, trialFlags.phone, trialFlags.count, time.Now())
		if err != nil {
			return err
		}
		if _, err := registry.Add(trial); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Proefdeelnemer toegevoegd: %s (%s)\n", trial.Name, trial.ID)
		return nil
	},
}

var trialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trial participants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, registry, err := openRegistry()
		if err != nil {
			return err
		}

		var list []types.Trial
		if cmd.Flags().Changed("lesson") {
			list, err = registry.ForLesson(trialFlags.lesson)
		} else {
			list, err = registry.All()
		}
		if err != nil {
			return err
		}
		return printTrials(cmd.OutOrStdout(), list)
	},
}

var trialsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a trial participant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, registry, err := openRegistry()
		if err != nil {
			return err
		}

		trial, err := registry.Find(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("lesson") {
			trial.Coursecode = trialFlags.lesson
		}
		if flags.Changed("name") {
			trial.Name = trialFlags.name
		}
		if flags.Changed("phone") {
			trial.Phone = trialFlags.phone
		}
		if flags.Changed("count") {
			trial.Count = max(trialFlags.count, 0)
		}

		if _, err := registry.Update(trial); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Proefdeelnemer bijgewerkt: %s\n", trial.ID)
		return nil
	},
}

var trialsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a trial participant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, registry, err := openRegistry()
		if err != nil {
			return err
		}
		if _, err := registry.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Proefdeelnemer verwijderd: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trialsCmd)
	trialsCmd.AddCommand(trialsAddCmd, trialsListCmd, trialsUpdateCmd, trialsRemoveCmd)

	for _, c := range []*cobra.Command{trialsAddCmd, trialsUpdateCmd} {
		c.Flags().StringVar(&trialFlags.lesson, "lesson", "", "Coursecode of the lesson")
		c.Flags().StringVar(&trialFlags.name, "name", "", "Name of the participant")
		c.Flags().StringVar(&trialFlags.phone, "phone", "", "Phone number")
		c.Flags().IntVar(&trialFlags.count, "count", 0, "Number of trial lessons attended")
	}
	trialsListCmd.Flags().StringVar(&trialFlags.lesson, "lesson", "", "Only this coursecode")

	trialsAddCmd.MarkFlagRequired("lesson")
	trialsAddCmd.MarkFlagRequired("name")
}

func printTrials(out io.Writer, list []types.Trial) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "Geen proefdeelnemers.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLes\tNaam\tTelefoon\tAantal")
	for _, trial := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", trial.ID, trial.Coursecode, trial.Name, trial.Phone, trial.Count)
	}
	return tw.Flush()
}
