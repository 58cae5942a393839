package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rankcausal/adapters/solver"
	"rankcausal/app"
	"rankcausal/internal/config"
	"rankcausal/internal/container"
	"rankcausal/internal/errors"
	"rankcausal/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "rankcausal",
		Short:         "Ranking-theoretic causal reasoning over structural ranking models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file read before the process environment")

	load := func(backend string) (*container.Container, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		if backend != "" {
			cfg.Solver.Backend = backend
		}
		return container.New(cfg)
	}

	rootCmd.AddCommand(
		newCircuitCmd(load),
		newDiscoverCmd(load),
		newIdentifyCmd(load),
		newBackendsCmd(),
	)
	return rootCmd
}

type loader func(backend string) (*container.Container, error)

func newCircuitCmd(load loader) *cobra.Command {
	var i1, i2, i3 bool
	var format, backend string

	cmd := &cobra.Command{
		Use:   "circuit",
		Short: "Diagnose the NOT/OR/OR fault circuit",
		Long: `Run the full analysis battery on the boolean circuit: which gate faults
cause a failure, the discovered structure over the faults and the output,
minimal fault repairs that restore the output, and whether every failure is
explained by a fault.

Example: rankcausal circuit --i3 --format markdown --backend sat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(backend)
			if err != nil {
				return err
			}
			req := app.CircuitRequest(i1, i2, i3)
			req.RepairConfig.MaxSize = c.Config.Engine.MaxRepairSize
			report, err := c.Analysis.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().BoolVar(&i1, "i1", false, "Input of the NOT gate")
	cmd.Flags().BoolVar(&i2, "i2", false, "Second input of the first OR gate")
	cmd.Flags().BoolVar(&i3, "i3", false, "Second input of the output OR gate")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|markdown|html|dot")
	cmd.Flags().StringVar(&backend, "backend", "", "Solver backend (default from RC_SOLVER_BACKEND)")
	return cmd
}

func writeReport(w io.Writer, report *app.Report, format string) error {
	var out string
	switch strings.ToLower(format) {
	case "text", "markdown", "md":
		out = report.Markdown()
	case "html":
		out = report.HTML()
	case "dot":
		out = report.DOT()
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown format %q (use text, markdown, html or dot)", format))
	}
	_, err := io.WriteString(w, out)
	return err
}

func newDiscoverCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [fixture] [variables...]",
		Short: "Run PC structure discovery on a built-in model",
		Long: `Discover the causal structure of a fixture model from its ranked
conditional independencies. Without variables every model variable is used.

Example: rankcausal discover collider-chain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, ok := testkit.Lookup(args[0])
			if !ok {
				return errors.NotFound(fmt.Sprintf("fixture %q", args[0]))
			}
			c, err := load("")
			if err != nil {
				return err
			}
			m := fixture.Build()
			vars := args[1:]
			if len(vars) == 0 {
				vars = m.Variables()
			}
			res, err := c.Discovery.Discover(m, vars)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run %s: %d CI tests, %d adjacencies\n", res.RunID, res.CITests, len(res.Skeleton()))
			for _, e := range res.Oriented {
				fmt.Fprintf(w, "  %s -> %s\n", e.From, e.To)
			}
			for _, e := range res.Edges {
				fmt.Fprintf(w, "  %s -- %s\n", e.From, e.To)
			}
			return nil
		},
	}
	return cmd
}

func newIdentifyCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Backdoor and frontdoor identification on the confounded fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load("")
			if err != nil {
				return err
			}
			id := c.Identifier
			w := cmd.OutOrStdout()

			m := testkit.ConfoundedFork()
			fmt.Fprintln(w, "confounded: U -> A -> B, U -> B")
			for _, p := range id.BackdoorPaths(m, "A", "B") {
				fmt.Fprintf(w, "  backdoor path %s\n", strings.Join(p, " - "))
			}
			for _, z := range [][]string{{}, {"U"}} {
				ok, err := id.IsBackdoorAdmissible(m, "A", "B", z)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  Z=%v admissible: %t\n", z, ok)
			}
			eff, err := id.BackdoorAdjustedEffect(m, "A", "B", []string{"U"}, true, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  adjusted effect of A on B given {U}: %g\n", eff)

			m = testkit.Frontdoor()
			fmt.Fprintln(w, "frontdoor: U -> A -> M -> B, U -> B")
			ok, err := id.IsFrontdoorApplicable(m, "A", "M", "B")
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  M satisfies the frontdoor criterion: %t\n", ok)
			if ok {
				eff, err := id.FrontdoorEffect(m, "A", "M", "B", true, false)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  frontdoor effect of A on B: %g\n", eff)
			}
			return nil
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List solver backends and fixture models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "backends:")
			for _, name := range solver.Backends() {
				fmt.Fprintf(w, "  %s\n", name)
			}
			fmt.Fprintln(w, "fixtures:")
			for _, f := range testkit.Fixtures() {
				fmt.Fprintf(w, "  %-20s %s\n", f.Name, f.Description)
			}
			return nil
		},
	}
}
