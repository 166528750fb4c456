// shaderscope resolves shader inheritance: ancestor chains, member
// scope, navigation trees and structural anomalies over parsed-unit
// JSON produced by an external parser.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shaderscope/internal/config"
	"shaderscope/internal/engine"
	"shaderscope/internal/logging"
	"shaderscope/internal/shader"
)

var (
	// Global flags
	verbose    bool
	configPath string
	workspace  string
	unitPaths  []string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shaderscope",
	Short: "shaderscope - shader inheritance resolution engine",
	Long: `shaderscope builds the inheritance graph of a shader workspace and
answers scope questions over it: ancestor chains, member resolution,
navigation trees, redundant bases and orphaned overrides.

It consumes parsed-unit JSON documents emitted by an external shader
parser; grammar parsing itself is out of scope.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if len(unitPaths) > 0 {
			cfg.Scan.UnitPaths = unitPaths
		}
		logging.Boot("config loaded: %+v", cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List inheritance tree roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range s.GetRoots() {
			fmt.Printf("%s\t%s\n", d.Name, d.FileIdentity)
		}
		return nil
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain [shader]",
	Short: "Print a shader's ancestor chain in resolution order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		if _, ok := s.Lookup(args[0]); !ok {
			return fmt.Errorf("unknown shader %q", args[0])
		}
		for i, d := range s.ResolveChain(args[0]) {
			fmt.Printf("%d\t%s\t%s\n", i+1, d.Name, d.FileIdentity)
		}
		return nil
	},
}

var memberCmd = &cobra.Command{
	Use:   "member [name] [shader]",
	Short: "Resolve a member name against a shader's scope",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		res, err := s.FindMember(args[0], args[1])
		if err != nil {
			return err
		}

		if !res.Found {
			fmt.Printf("%s: not declared by any shader\n", args[0])
			suggest(s, args[0], args[1])
			return nil
		}
		if len(res.Local) > 0 {
			fmt.Printf("declared locally by %s\n", args[1])
		}
		if len(res.ScopedShaders) == 0 && len(res.Local) == 0 {
			fmt.Printf("%s exists but is not reachable from %s\n", args[0], args[1])
			suggest(s, args[0], args[1])
			return nil
		}
		for _, d := range res.ScopedShaders {
			fmt.Printf("in scope via %s\t%s\n", d.Name, d.FileIdentity)
		}
		for _, m := range res.Mems {
			fmt.Printf("resolves to %s.%s (%s %s)\n", m.Owner, m.Name, m.Kind, m.TypeName)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [shader]",
	Short: "Print the navigation tree under a shader (or all roots)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		if len(args) == 1 {
			node, err := s.Export(args[0])
			if err != nil {
				return err
			}
			printTree(node, 0)
			return nil
		}
		for _, node := range s.ExportRoots() {
			printTree(node, 0)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report structural anomalies, redundant bases and orphaned overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}

		findings := 0
		for _, a := range s.Anomalies() {
			fmt.Println(a.String())
			findings++
		}
		for _, r := range s.RedundantBases() {
			fmt.Printf("redundant base: %s declares %s, already inherited via %s\n",
				r.Shader, r.Base, r.Witness)
			findings++
		}
		for _, m := range s.OrphanedOverrides() {
			fmt.Printf("orphaned override: %s.%s has no ancestor method to override\n",
				m.Owner, m.Name)
			findings++
		}

		if findings == 0 {
			fmt.Printf("ok: %d shaders, no findings\n", s.Count())
		} else {
			fmt.Printf("%d findings across %d shaders\n", findings, s.Count())
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [shader]",
	Short: "Export the snapshot tree as JSON (whole forest without args)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}

		var payload any
		if len(args) == 1 {
			node, err := s.Export(args[0])
			if err != nil {
				return err
			}
			payload = node
		} else {
			payload = s.ExportRoots()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch unit directories and rebuild on change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, err := loadSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		logger.Info("initial build complete",
			zap.Int("shaders", s.Count()),
			zap.Int("anomalies", len(s.Anomalies())))

		loader := engine.NewFileLoader(cfg.Scan.UnitPaths, cfg.Scan.MaxConcurrency)
		w, err := engine.NewUnitWatcher(s, loader, cfg.Scan.UnitPaths, cfg.DebounceDuration())
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down", zap.Any("stats", w.Stats()))
		return nil
	},
}

// loadSession builds a fully queryable session from the configured unit
// paths. Structural problems become anomalies, not errors.
func loadSession(ctx context.Context) (*engine.Session, error) {
	loader := engine.NewFileLoader(cfg.Scan.UnitPaths, cfg.Scan.MaxConcurrency)
	units, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}

	s := engine.NewSession(engine.Options{
		DirectParentsOnly: cfg.Engine.DirectParentsOnly,
		SuggestionCap:     cfg.Engine.SuggestionCap,
	})
	s.Rebuild(units)
	logger.Debug("session ready",
		zap.Int("units", len(units)),
		zap.Int("shaders", s.Count()))
	return s, nil
}

func suggest(s *engine.Session, memberName, scopeName string) {
	sug := s.Suggest(memberName, scopeName)
	printBucket := func(label string, ds []*shader.ShaderDescriptor) {
		if len(ds) == 0 {
			return
		}
		names := make([]string, len(ds))
		for i, d := range ds {
			names[i] = d.Name
		}
		fmt.Printf("%s: %s\n", label, strings.Join(names, ", "))
	}
	printBucket("defined by", sug.DirectDefiners)
	printBucket("inherited by", sug.PopularInheritors)
	printBucket("workspace shaders inheriting it", sug.WorkspaceInheritors)
}

func printTree(n *engine.ExportNode, depth int) {
	fmt.Printf("%s%s\t%s\n", strings.Repeat("  ", depth), n.Name, n.FileIdentity)
	for _, c := range n.Children {
		printTree(c, depth+1)
	}
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace root for file logs")
	rootCmd.PersistentFlags().StringSliceVarP(&unitPaths, "units", "u", nil, "unit JSON files or directories (overrides config)")

	rootCmd.AddCommand(rootsCmd, chainCmd, memberCmd, treeCmd, checkCmd, exportCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
