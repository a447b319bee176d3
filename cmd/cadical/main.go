package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cadical "github.com/domschrei/cadical"
	"github.com/domschrei/cadical/internal/dimacs"
)

var rootCmd = &cobra.Command{
	Use:   "cadical [flags] <instance.cnf[.gz]>",
	Short: "CDCL SAT solver with domain compaction and proof tracing",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().String("proof", "", "write a proof trace to this path (.gz/.zst compressed)")
	rootCmd.Flags().Bool("lrat", false, "produce LRAT hints in the proof")
	rootCmd.Flags().Bool("no-compact", false, "disable variable domain compaction")
	rootCmd.Flags().Int64("max-conflicts", -1, "conflict limit (-1 = none)")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.Flags().Bool("cpuprof", false, "save pprof CPU profile in cpuprof")
	rootCmd.Flags().Bool("memprof", false, "save pprof memory profile in memprof")
	rootCmd.PersistentFlags().String("config", "", "config file (default .cadical.yaml)")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".cadical")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("CADICAL")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

func run(cmd *cobra.Command, args []string) error {
	if viper.GetBool("cpuprof") {
		f, err := os.Create("cpuprof")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	solver := cadical.New()
	defer solver.Delete()
	if viper.GetBool("verbose") {
		solver.Logger().SetLevel(logrus.DebugLevel)
	}
	if viper.GetBool("lrat") {
		if err := solver.Set("lrat", 1); err != nil {
			return err
		}
	}
	if viper.GetBool("no-compact") {
		if err := solver.Set("compact", 0); err != nil {
			return err
		}
	}
	if path := viper.GetString("proof"); path != "" {
		if err := solver.TraceProof(path); err != nil {
			return err
		}
	}
	if mc := viper.GetInt64("max-conflicts"); mc >= 0 {
		if err := solver.Limit("conflicts", mc); err != nil {
			return err
		}
	}

	instance := args[0]
	if err := dimacs.Load(instance, solver); err != nil {
		return err
	}

	fmt.Printf("c variables:  %d\n", solver.Vars())

	t := time.Now()
	res := solver.Solve()
	elapsed := time.Since(t)

	stats := solver.Statistics()
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d\n", stats.Conflicts)
	fmt.Printf("c compacts:   %d\n", stats.Compacts)

	switch res {
	case cadical.ResultSatisfiable:
		fmt.Println("s SATISFIABLE")
		printModel(solver)
	case cadical.ResultUnsatisfiable:
		fmt.Println("s UNSATISFIABLE")
	default:
		fmt.Println("s UNKNOWN")
	}

	if viper.GetBool("memprof") {
		f, err := os.Create("memprof")
		if err != nil {
			return err
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
	return nil
}

func printModel(solver *cadical.Solver) {
	fmt.Print("v")
	for v := 1; v <= solver.Vars(); v++ {
		fmt.Printf(" %d", solver.Val(v))
	}
	fmt.Println(" 0")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
