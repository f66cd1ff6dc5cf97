package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"helm.sh/helm/v3/pkg/strvals"

	"github.com/goldenchart/goldengen/internal/render"
	"github.com/goldenchart/goldengen/internal/resolve"
	"github.com/goldenchart/goldengen/internal/schema"
	"github.com/goldenchart/goldengen/internal/validate"
	"github.com/goldenchart/goldengen/internal/versions"
)

var (
	flagReleaseName string
	flagNamespace   string
	flagChartName   string
	flagUnknown     string
	flagConcurrency int
	flagValuesFile  string
	flagSet         []string
	flagOutDir      string
	flagSchemaOut   string
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func main() {
	root := &cobra.Command{
		Use:           "goldengen",
		Short:         "Validate and render golden chart values documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagReleaseName, "release-name", "release", "helm release name resource names derive from")
	root.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "namespace stamped on rendered resources")
	root.PersistentFlags().StringVar(&flagChartName, "chart-name", resolve.DefaultChartName, "chart name resource names derive from")
	root.PersistentFlags().StringVar(&flagUnknown, "unknown-fields", "warn", "unknown field handling: warn|ignore")
	root.AddCommand(validateCommand(), renderCommand(), schemaCommand(), versionsCommand())

	if err := root.Execute(); err != nil {
		if !strings.HasSuffix(err.Error(), "help requested") {
			log.Fatal(err)
		}
	}
}

// fileReport is one validated file's outcome, kept aside so reports print
// in input order regardless of which worker finished first.
type fileReport struct {
	res    *resolve.Resolved
	issues []validate.Issue
	err    error
}

func validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <values.yaml>...",
		Short: "Check values documents and report every violation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := unknownMode()
			if err != nil {
				return err
			}
			rel := releaseOptions()

			workers := flagConcurrency
			if workers < 1 {
				workers = 1
			}
			sem := make(chan struct{}, workers)
			reports := make([]fileReport, len(args))

			var g errgroup.Group
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					sem <- struct{}{}
					defer func() { <-sem }()

					doc, err := resolve.Load(path)
					if err != nil {
						reports[i] = fileReport{err: err}
						return nil
					}
					res, issues, err := resolve.Resolve(doc, rel, resolve.Options{Unknown: mode})
					reports[i] = fileReport{res: res, issues: issues, err: err}
					return nil
				})
			}
			// Workers stash their outcome instead of failing; Wait is the barrier.
			_ = g.Wait()

			rejected := 0
			for i, path := range args {
				if i > 0 {
					fmt.Println()
				}
				if !printReport(path, reports[i]) {
					rejected++
				}
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d files rejected", rejected, len(args))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", max(2, runtime.NumCPU()), "parallel files")
	return cmd
}

// printReport prints one file's report and reports whether it passed.
func printReport(path string, r fileReport) bool {
	if r.err != nil {
		red.Printf("✗ %s\n", path)
		fmt.Printf("  %v\n", r.err)
		return false
	}
	if r.res == nil {
		red.Printf("✗ %s\n", path)
		printIssues(r.issues)
		return false
	}
	green.Printf("✓ %s\n", path)
	printIssues(r.issues)
	for _, k := range schema.Kinds() {
		if n := len(r.res.Kind(k).Keys); n > 0 {
			fmt.Printf("  %s: %d\n", k, n)
		}
	}
	return true
}

func printIssues(issues []validate.Issue) {
	for _, issue := range issues {
		switch issue.Severity {
		case validate.SeverityWarning:
			yellow.Printf("  ⚠ %s\n", issue)
		default:
			fmt.Printf("  ✗ %s\n", issue)
		}
	}
}

func renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render Kubernetes manifests from a values document",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := unknownMode()
			if err != nil {
				return err
			}
			doc, err := resolve.Load(flagValuesFile)
			if err != nil {
				return err
			}
			for _, kv := range flagSet {
				if err := strvals.ParseInto(kv, doc.Tree); err != nil {
					return fmt.Errorf("parse --set %q: %w", kv, err)
				}
			}
			res, issues, err := resolve.Resolve(doc, releaseOptions(), resolve.Options{Unknown: mode})
			if err != nil {
				return err
			}
			for _, issue := range issues {
				if issue.Severity == validate.SeverityWarning {
					yellow.Fprintf(os.Stderr, "⚠ %s\n", issue)
				}
			}
			if res == nil {
				for _, issue := range issues {
					if issue.Severity == validate.SeverityError {
						red.Fprintf(os.Stderr, "✗ %s\n", issue)
					}
				}
				return fmt.Errorf("%s: validation failed", flagValuesFile)
			}
			manifests, err := render.RenderAll(res)
			if err != nil {
				return err
			}
			if flagOutDir == "-" {
				return render.Encode(os.Stdout, manifests)
			}
			return writeManifests(flagOutDir, manifests)
		},
	}
	cmd.Flags().StringVarP(&flagValuesFile, "values", "f", "values.yaml", "values document to render")
	cmd.Flags().StringArrayVar(&flagSet, "set", nil, "override values (key=val, helm --set syntax)")
	cmd.Flags().StringVarP(&flagOutDir, "out", "o", "manifests", "output directory, - for a stream on stdout")
	return cmd
}

// writeManifests writes one file per manifest into outDir.
func writeManifests(outDir string, manifests []render.Manifest) error {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	for _, m := range manifests {
		path := filepath.Join(absOut, render.Filename(m))
		absPath, _ := filepath.Abs(path)
		if !strings.HasPrefix(absPath, absOut+string(filepath.Separator)) {
			return errors.New("refusing to write outside the output directory")
		}
		var buf bytes.Buffer
		if err := render.Encode(&buf, []render.Manifest{m}); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

func schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export the values schema as JSON Schema draft-07",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Export()
			if err != nil {
				return err
			}
			if flagSchemaOut == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(flagSchemaOut, data, 0o644); err != nil {
				return err
			}
			log.Printf("wrote %s", flagSchemaOut)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagSchemaOut, "out", "o", "values.schema.json", "output file, - for stdout")
	return cmd
}

func versionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions [component]",
		Short: "Print supported platform versions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				list, err := versions.Supported(args[0])
				if err != nil {
					return err
				}
				fmt.Println(strings.Join(list, " "))
				return nil
			}
			for _, name := range versions.Components() {
				list, _ := versions.Supported(name)
				fmt.Printf("%s: %s\n", name, strings.Join(list, " "))
			}
			return nil
		},
	}
}

func releaseOptions() resolve.ReleaseOptions {
	return resolve.ReleaseOptions{
		Name:      flagReleaseName,
		Namespace: flagNamespace,
		ChartName: flagChartName,
	}
}

func unknownMode() (validate.UnknownFieldMode, error) {
	switch flagUnknown {
	case "warn":
		return validate.UnknownWarn, nil
	case "ignore":
		return validate.UnknownIgnore, nil
	}
	return validate.UnknownIgnore, fmt.Errorf("--unknown-fields must be warn or ignore, got %q", flagUnknown)
}
