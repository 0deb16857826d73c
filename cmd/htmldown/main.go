// Command htmldown converts documents to Markdown or structured JSON from
// the command line, using the same pipeline as the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/htmldown/internal/parser"
	"github.com/dgallion1/htmldown/internal/render"
	"github.com/dgallion1/htmldown/internal/section"
	"github.com/dgallion1/htmldown/internal/transform"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "htmldown",
		Short:        "htmldown converts HTML and other documents to Markdown",
		SilenceUsage: true,
	}
	root.AddCommand(newConvertCmd())
	return root
}

type convertOpts struct {
	output       string
	format       string
	headingStyle string
	bulletMarker string
	keepChrome   bool
}

func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a document to Markdown or structured JSON",
		Long: `Convert reads an HTML, Markdown, DOCX, PDF, CSV or plain text file and
writes the converted result. Use "-" to read HTML from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "markdown", "output format: markdown, json")
	cmd.Flags().StringVar(&opts.headingStyle, "heading-style", "", "heading style: atx, atx-closed, setext")
	cmd.Flags().StringVar(&opts.bulletMarker, "bullet-marker", "", "unordered list marker")
	cmd.Flags().BoolVar(&opts.keepChrome, "keep-chrome", false, "keep nav, header and footer content")

	return cmd
}

func runConvert(input string, opts *convertOpts) error {
	var r io.Reader
	filename := input
	if input == "-" {
		r = os.Stdin
		filename = "stdin.html"
	} else {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		return err
	}
	tree, err := p.Parse(r, filepath.Base(filename))
	if err != nil {
		return err
	}

	rules := transform.DefaultRules()
	if opts.keepChrome {
		rules = []transform.Rule{
			transform.StripComments(),
			transform.StripElements("script", "style"),
			transform.CollapseWhitespace(),
		}
	}
	cleaned, _, err := transform.Apply(tree, rules)
	if err != nil {
		return err
	}

	ropts := render.DefaultOptions()
	if opts.headingStyle != "" {
		ropts.HeadingStyle = render.HeadingStyle(opts.headingStyle)
	}
	if opts.bulletMarker != "" {
		ropts.BulletMarker = opts.bulletMarker
	}

	var out []byte
	switch opts.format {
	case "markdown":
		md, err := render.Render(cleaned, ropts)
		if err != nil {
			return err
		}
		out = []byte(md)
	case "json":
		doc := section.NewBuilder(ropts).BuildDocument(cleaned)
		out, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format: %s (must be 'markdown' or 'json')", opts.format)
	}

	if opts.output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(opts.output, out, 0o644)
}
