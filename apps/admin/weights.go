package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/gradebook/apps"
	"github.com/trezcool/gradebook/core/grading"
)

func (cli *commandLine) printWeights(weights grading.WeightConfig) error {
	w := cli.table()
	fmt.Fprintln(w, "COMPONENT\tWEIGHT\t")
	for _, wt := range weights {
		def := ""
		if grading.IsDefaultComponent(wt.Component) {
			def = "default"
		}
		fmt.Fprintf(w, "%s\t%g%%\t%s\n", wt.Component, wt.Weight, def)
	}
	fmt.Fprintf(w, "TOTAL\t%g%%\t\n", weights.Total())
	return w.Flush()
}

// parseWeight parses COMPONENT=WEIGHT.
func parseWeight(s string) (grading.Weight, error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return grading.Weight{}, apps.NewArgumentError("invalid weight %q, expected COMPONENT=WEIGHT", s)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s[i+1:], "%")), 64)
	if err != nil {
		return grading.Weight{}, apps.NewArgumentError("invalid weight %q, expected COMPONENT=WEIGHT", s)
	}
	return grading.Weight{Component: s[:i], Weight: weight}, nil
}

func (cli *commandLine) weightsCmd(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	var (
		weights grading.WeightConfig
		err     error
	)
	switch args[0] {
	case "show":
		weights, err = cli.weights.Weights(ctx)

	case "set":
		if len(args) < 2 {
			fmt.Fprintln(cli.stderr, "Usage: weights set COMPONENT=WEIGHT...")
			return errHelp
		}
		sw := grading.SaveWeights{}
		for _, arg := range args[1:] {
			w, err := parseWeight(arg)
			if err != nil {
				return err
			}
			sw.Weights = append(sw.Weights, w)
		}
		weights, err = cli.weights.Save(ctx, sw)

	case "add":
		fs := cli.flagSet("weights add", "weights add -name NAME [-weight WEIGHT]")
		name := fs.String("name", "", "The component name (required)")
		weight := fs.Float64("weight", 0, "The component weight; rebalance the others with `weights set`")
		if err = parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *name == "" {
			return usageErr(fs)
		}
		weights, err = cli.weights.AddComponent(ctx, grading.NewComponent{Component: *name, Weight: *weight})

	case "remove":
		if len(args) != 2 {
			fmt.Fprintln(cli.stderr, "Usage: weights remove NAME")
			return errHelp
		}
		weights, err = cli.weights.RemoveComponent(ctx, args[1])

	case "reset":
		weights, err = cli.weights.Reset(ctx)

	case "export":
		fs := cli.flagSet("weights export", "weights export [-o FILE]")
		out := fs.String("o", "", "The yaml file to write, stdout by default")
		if err = parseFlags(fs, args[1:]); err != nil {
			return err
		}
		return cli.exportWeights(ctx, *out)

	case "import":
		fs := cli.flagSet("weights import", "weights import -f FILE")
		in := fs.String("f", "", "The yaml file to read (required)")
		if err = parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *in == "" {
			return usageErr(fs)
		}
		weights, err = cli.importWeights(ctx, *in)

	default:
		cli.printUsage()
		return errHelp
	}
	if err != nil {
		return err
	}
	return cli.printWeights(weights)
}

func (cli *commandLine) exportWeights(ctx context.Context, path string) (err error) {
	weights, err := cli.weights.Weights(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = cli.stdout
	if path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return errors.Wrap(ferr, "creating weights file")
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(weights); err != nil {
		return errors.Wrap(err, "encoding weights")
	}
	if err = enc.Close(); err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cli.stdout, "Weights written to %s\n", path)
	}
	return nil
}

func (cli *commandLine) importWeights(ctx context.Context, path string) (grading.WeightConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading weights file")
	}
	var weights grading.WeightConfig
	if err = yaml.Unmarshal(data, &weights); err != nil {
		return nil, errors.Wrap(err, "decoding weights file")
	}
	return cli.weights.Replace(ctx, grading.SaveWeights{Weights: weights})
}
