package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/ecosim/internal/climate"
	"github.com/talgya/ecosim/internal/ecosystem"
	"github.com/talgya/ecosim/internal/export"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		c        ecosystem.Conditions
		generate bool
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "create [ecosystem]",
		Short: "Create a new ecosystem",
		Long: `Creates an empty ecosystem with the given conditions.

Examples:
  ecosim create meadow --temperature 22 --humidity 55 --water 45
  ecosim create tundra --generate --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if generate {
				c = climate.Generate(a.cfg.GenConfig(seed))
			}
			if err := a.sim.CreateEcosystem(args[0], c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ecosystem %s created (%s)\n", args[0], c)
			return nil
		},
	}
	addConditionFlags(cmd, &c)
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate conditions from simplex noise")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for --generate (0 = random)")
	cmd.MarkFlagsMutuallyExclusive("generate", "temperature")
	cmd.MarkFlagsMutuallyExclusive("generate", "humidity")
	cmd.MarkFlagsMutuallyExclusive("generate", "water")
	return cmd
}

func addConditionFlags(cmd *cobra.Command, c *ecosystem.Conditions) {
	cmd.Flags().Float64Var(&c.Temperature, "temperature", 0, "Temperature")
	cmd.Flags().Float64Var(&c.Humidity, "humidity", 0, "Humidity")
	cmd.Flags().Float64Var(&c.WaterAmount, "water", 0, "Available water")
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ecosystems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.sim.ListEcosystems()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [ecosystem]",
		Short: "Show species and conditions of an ecosystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eco, err := a.sim.LoadEcosystem(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ecosystem %s\n", eco.Name)
			fmt.Fprintf(out, "Conditions: %s\n", eco.Conditions())
			fmt.Fprintf(out, "Plants (%d):\n", len(eco.Plants()))
			for _, s := range eco.Plants() {
				fmt.Fprintf(out, "  %s\n", s)
			}
			fmt.Fprintf(out, "Animals (%d):\n", len(eco.Animals()))
			for _, s := range eco.Animals() {
				fmt.Fprintf(out, "  %s\n", s)
			}
			return nil
		},
	}
}

func newAddPlantCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-plant [ecosystem] [name]",
		Short: "Add a plant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sim.AddPlant(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plant %s added\n", args[1])
			return nil
		},
	}
}

func newAddAnimalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-animal [ecosystem] [name] [herbivore|carnivore|omnivore]",
		Short: "Add an animal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			diet, err := ecosystem.ParseDiet(args[2])
			if err != nil {
				return err
			}
			if err := a.sim.AddAnimal(args[0], args[1], diet); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Animal %s (%s) added\n", args[1], diet)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var plant bool
	cmd := &cobra.Command{
		Use:   "remove [ecosystem] [name]",
		Short: "Remove an animal, or a plant with --plant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := ecosystem.KindAnimal
			if plant {
				kind = ecosystem.KindPlant
			}
			if err := a.sim.RemoveSpecies(args[0], args[1], kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", kind, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&plant, "plant", false, "Remove a plant instead of an animal")
	return cmd
}

func newDietCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diet [ecosystem] [animal] [herbivore|carnivore|omnivore]",
		Short: "Change an animal's diet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			diet, err := ecosystem.ParseDiet(args[2])
			if err != nil {
				return err
			}
			if err := a.sim.UpdateDiet(args[0], args[1], diet); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Diet of %s updated to %s\n", args[1], diet)
			return nil
		},
	}
}

func newInteractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interact [ecosystem] [predator] [prey]",
		Short: "Let one species try to eat another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.sim.Interact(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message())
			return nil
		},
	}
}

func newPredictCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "predict [ecosystem]",
		Short: "Forecast population trends from current conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.sim.Predict(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plants population: %s\nAnimals population: %s\n", f.Plants, f.Animals)
			return nil
		},
	}
}

func newConditionsCmd(a *app) *cobra.Command {
	var c ecosystem.Conditions
	cmd := &cobra.Command{
		Use:   "conditions [ecosystem]",
		Short: "Show conditions, or replace them when all three flags are given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eco := args[0]
			if cmd.Flags().Changed("temperature") {
				if err := a.sim.UpdateConditions(eco, c); err != nil {
					return err
				}
			}
			cur, err := a.sim.Conditions(eco)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cur)
			return nil
		},
	}
	addConditionFlags(cmd, &c)
	cmd.MarkFlagsRequiredTogether("temperature", "humidity", "water")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [ecosystem]",
		Short: "Show the interaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.sim.History(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, in := range log {
				if in.RecordedAt.IsZero() {
					fmt.Fprintf(out, "%d. %s\n", i+1, in.Text)
					continue
				}
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, in.Text, humanize.Time(in.RecordedAt))
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var what, outPath string
	cmd := &cobra.Command{
		Use:   "export [ecosystem]",
		Short: "Export species or interactions as CSV",
		Long: `Writes CSV with a header row to --out, or stdout when --out is "-".

Examples:
  ecosim export meadow --what species --out meadow-species.csv
  ecosim export meadow --what interactions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if what != "species" && what != "interactions" {
				return fmt.Errorf("unknown export %q (want species or interactions)", what)
			}
			eco, err := a.sim.LoadEcosystem(args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			if what == "species" {
				return export.WriteSpecies(w, eco.Name, eco.Species())
			}
			return export.WriteInteractions(w, eco.Name, eco.Log())
		},
	}
	cmd.Flags().StringVar(&what, "what", "species", "What to export: species or interactions")
	cmd.Flags().StringVar(&outPath, "out", "-", "Output file")
	return cmd
}
