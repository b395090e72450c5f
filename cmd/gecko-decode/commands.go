package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dccourt/esphome-gecko/internal/accessor"
	"github.com/dccourt/esphome-gecko/internal/catalog"
	"github.com/dccourt/esphome-gecko/internal/decoder"
	"github.com/dccourt/esphome-gecko/internal/diag"
	"github.com/dccourt/esphome-gecko/internal/frame"
	"github.com/dccourt/esphome-gecko/internal/inspect"
	"github.com/dccourt/esphome-gecko/internal/logging"
	"github.com/dccourt/esphome-gecko/internal/output"
)

// Decode command flags
var (
	revisionName string
	controllerID string
	catalogPath  string
	inputFile    string
	skipHeader   int
	adjustOffset int
	trace        bool
	outputFormat string
)

// Controller command flags
var (
	nickname string
)

const sourceBuiltin = "builtin"

func init() {
	for _, cmd := range []*cobra.Command{decodeCmd, inspectCmd} {
		cmd.Flags().StringVarP(&revisionName, "revision", "r", "", "Structure revision (see 'gecko-decode revisions')")
		cmd.Flags().StringVarP(&controllerID, "controller", "c", "", "Controller id; uses the revision pinned with 'controller set'")
		cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (.yaml, .yml or .toml) instead of a built-in revision")
		cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read the hex frame from a file ('-' for stdin)")
		cmd.Flags().IntVar(&skipHeader, "skip-header", 0, "Bytes to drop from the front of the frame")
		cmd.Flags().IntVar(&adjustOffset, "adjust-offset", 0, "Shift every raw index by N before the revision's corrections")
	}
	decodeCmd.Flags().BoolVarP(&trace, "trace", "t", false, "Print the hex dump and a line per decoded field")
	decodeCmd.Flags().StringVarP(&outputFormat, "format", "o", "detailed", "Output format ("+strings.Join(output.Formats(), ", ")+")")

	schemaCmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file (.yaml, .yml or .toml) instead of a built-in revision")

	controllerSetCmd.Flags().StringVarP(&revisionName, "revision", "r", "", "Structure revision to pin")
	controllerSetCmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog file to pin instead of a revision")
	controllerSetCmd.Flags().StringVar(&nickname, "nickname", "", "Friendly name")
	controllerCmd.AddCommand(controllerSetCmd, controllerListCmd)

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(revisionsCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(controllerCmd)
}

// decodeCmd decodes one frame
var decodeCmd = &cobra.Command{
	Use:   "decode [HEX]",
	Short: "Decode a hex frame",
	Long: `Decode a captured frame against a structure revision.

The frame is a hex string: whitespace and a leading 0x are ignored. It comes
from the argument, --file, or standard input when it is not a terminal.

The revision is taken from --catalog, then --revision, then the controller
named with --controller, then the config file's default.`,
	Example: `  # Config structure from a combined dump with a 2-byte header
  gecko-decode decode -r inyt-cfg-65 --skip-header 2 -f dump.hex

  # Log structure from the same dump
  gecko-decode decode -r inyt-log-65 --skip-header 2 -f dump.hex

  # Live status message as JSON, with the revision pinned to a controller
  gecko-decode controller set pool-house -r inyt-status-v51
  echo 0E05... | gecko-decode decode -c pool-house -o json

  # Show how each byte was mapped
  gecko-decode decode -r inyt-cfg-65 --trace 13024904...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	format, err := output.ParseFormat(flagOrDefault(cmd, "format", outputFormat, cfg.Defaults.Format))
	if err != nil {
		return err
	}
	if format.Binary() && isTerminal(out) {
		return fmt.Errorf("refusing to write %s to a terminal; redirect the output", format)
	}

	doTrace := trace
	if !cmd.Flags().Changed("trace") {
		doTrace = doTrace || cfg.Defaults.Trace
	}

	// Trace text shares stdout with text formats and moves to stderr for the rest
	traceOut := out
	if format != output.FormatDetailed && format != output.FormatCompact {
		traceOut = cmd.ErrOrStderr()
	}

	var sinks []diag.Sink
	if doTrace {
		sinks = append(sinks, diag.NewTextSink(traceOut))
	}

	rep, _, err := decodeFrame(cmd, args, sinks...)
	if err != nil {
		return err
	}

	if doTrace {
		fmt.Fprintln(traceOut)
	}

	return output.Write(out, format, rep, output.Options{
		Styled: format == output.FormatDetailed && isTerminal(out),
		Width:  output.GetTerminalWidth(),
	})
}

// inspectCmd opens the interactive browser
var inspectCmd = &cobra.Command{
	Use:   "inspect [HEX]",
	Short: "Browse a decoded frame interactively",
	Long: `Decode a frame and browse the result in the terminal.

Fields are listed in position order. Press / to filter, enter for a field's
details, x for the frame's hex dump and q to quit.`,
	Example: `  gecko-decode inspect -r inyt-log-65 --skip-header 2 -f dump.hex`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("inspect needs a terminal; use 'decode' to write to a pipe or file")
	}
	if inputFile == "-" || (len(args) == 0 && inputFile == "") {
		return errors.New("inspect reads the terminal for keys; pass the frame as an argument or with --file")
	}

	rep, buf, err := decodeFrame(cmd, args)
	if err != nil {
		return err
	}
	return inspect.Run(rep, buf)
}

// decodeFrame runs the shared decode pipeline: pick the catalog, read and
// trim the frame, decode it and record the decode against the controller.
func decodeFrame(cmd *cobra.Command, args []string, sinks ...diag.Sink) (*output.Report, []byte, error) {
	def, source, err := resolveDefinition()
	if err != nil {
		return nil, nil, err
	}
	logging.LogCatalog(def.Revision, source, def.Schema.Len(), len(def.Corrections))

	buf, err := readFrame(cmd, args)
	if err != nil {
		return nil, nil, err
	}

	skip := skipHeader
	if !cmd.Flags().Changed("skip-header") {
		skip = cfg.Defaults.SkipHeader
	}
	if buf, err = frame.SkipHeader(buf, skip); err != nil {
		return nil, nil, err
	}
	logging.LogRawBytes("Frame input", buf)

	sink := diag.Tee(append(sinks, diag.NewLogSink(logging.GetLogger()))...)
	corrections := def.Corrections.WithBase(adjustOffset)

	res := decoder.DecodeResult(buf, def.Schema, corrections,
		decoder.WithSink(sink),
		decoder.WithTrace(len(sinks) > 0 || logging.GetLogger().Core().Enabled(zap.DebugLevel)),
	)
	logging.LogDecode(def.Revision, len(buf), res.Consumed, len(res.Values), len(res.Skipped))

	// Only known controllers are recorded; a mistyped id must not create one
	if controllerID != "" && cfg.GetController(controllerID) != nil {
		cfg.MarkDecoded(controllerID, res.Consumed)
		if err := cfg.Save(); err != nil {
			logging.Warn("Failed to record decode in config", zap.String("controller", controllerID), zap.Error(err))
		}
	}

	return &output.Report{
		Revision:    def.Revision,
		Description: def.Description,
		Source:      source,
		Controller:  controllerID,
		Length:      len(buf),
		Result:      res,
	}, buf, nil
}

// resolveDefinition picks the catalog for a decode and reports where it came from
func resolveDefinition() (*catalog.Definition, string, error) {
	path := catalogPath
	if path == "" && controllerID != "" && revisionName == "" {
		if c := cfg.GetController(controllerID); c != nil {
			path = c.Catalog
		}
	}
	if path != "" {
		def, err := catalog.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		return def, path, nil
	}

	rev := revisionName
	if rev == "" {
		rev = cfg.ResolveRevision(controllerID)
	}
	if rev == "" {
		return nil, "", errors.New("no revision given; use --revision, pin one with 'controller set', or set defaults.revision in the config file")
	}

	return lookupRevision(rev)
}

// lookupRevision prefers a catalog file named after the revision in the
// configured catalog directory over the built-in one.
func lookupRevision(rev string) (*catalog.Definition, string, error) {
	if dir := cfg.Defaults.CatalogDir; dir != "" {
		for _, ext := range []string{".yaml", ".yml", ".toml"} {
			path := filepath.Join(dir, rev+ext)
			if _, err := os.Stat(path); err == nil {
				def, err := catalog.LoadFile(path)
				if err != nil {
					return nil, "", err
				}
				return def, path, nil
			}
		}
	}

	r, err := catalog.ParseRevision(rev)
	if err != nil {
		return nil, "", fmt.Errorf("%w (see 'gecko-decode revisions')", err)
	}
	def, err := catalog.Lookup(r)
	if err != nil {
		return nil, "", err
	}
	return def, sourceBuiltin, nil
}

// readFrame reads the hex frame from the argument, --file or stdin
func readFrame(cmd *cobra.Command, args []string) ([]byte, error) {
	switch {
	case len(args) == 1 && inputFile != "":
		return nil, errors.New("give the frame as an argument or with --file, not both")
	case len(args) == 1:
		return frame.ParseHex(args[0])
	case inputFile == "-":
		return frame.ReadHex(cmd.InOrStdin())
	case inputFile != "":
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open frame file: %w", err)
		}
		defer f.Close()
		return frame.ReadHex(f)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && output.IsTerminal(f) {
		return nil, errors.New("no frame given; pass it as an argument, with --file, or on stdin")
	}
	return frame.ReadHex(in)
}

// revisionsCmd lists the built-in revisions
var revisionsCmd = &cobra.Command{
	Use:   "revisions",
	Short: "List built-in structure revisions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "REVISION\tSTRUCTURE\tFIELDS\tDESCRIPTION")
		for _, rev := range catalog.Revisions() {
			def, err := catalog.Lookup(rev)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", def.Revision, def.Structure, def.Schema.Len(), def.Description)
		}
		return tw.Flush()
	},
}

// schemaCmd lists a revision's fields
var schemaCmd = &cobra.Command{
	Use:   "schema [REVISION]",
	Short: "Show a revision's fields and offset corrections",
	Example: `  gecko-decode schema inyt-log-65
  gecko-decode schema --catalog ./my-controller.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	var (
		def    *catalog.Definition
		source string
		err    error
	)
	switch {
	case catalogPath != "":
		def, err = catalog.LoadFile(catalogPath)
		source = catalogPath
	case len(args) == 1:
		def, source, err = lookupRevision(args[0])
	default:
		return errors.New("name a revision or pass --catalog")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Revision:     %s (%s)\n", def.Revision, source)
	if def.Description != "" {
		fmt.Fprintf(out, "Description:  %s\n", def.Description)
	}
	fmt.Fprintf(out, "Corrections:  %v\n\n", def.Corrections)

	accs := def.Schema.Accessors()
	sort.SliceStable(accs, func(i, j int) bool { return accs[i].Position() < accs[j].Position() })

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tPATH\tKIND\tACCESS\tDETAIL")
	for _, a := range accs {
		var detail string
		switch a.Kind() {
		case accessor.KindBool:
			detail = fmt.Sprintf("bit %d", a.Bit())
		case accessor.KindEnum:
			detail = strings.Join(a.Values(), ", ")
			if a.Shift() != 0 || a.MaskWidth() != 0 {
				detail = fmt.Sprintf("shift %d, mask %d: %s", a.Shift(), a.MaskWidth(), detail)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.Position(), a.Path(), a.Kind(), a.Access(), detail)
	}
	return tw.Flush()
}

// controllerCmd manages per-controller settings in the config file
var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Pin revisions to controllers",
	Long: `Remember which revision or catalog each controller's frames decode with.

Pins are stored in the config file. 'decode --controller ID' uses them.`,
}

var controllerSetCmd = &cobra.Command{
	Use:   "set ID",
	Short: "Pin a revision or catalog to a controller",
	Example: `  gecko-decode controller set pool-house -r inyt-status-v51 --nickname "Pool House Spa"
  gecko-decode controller set garden --catalog ~/gecko/garden.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runControllerSet,
}

func runControllerSet(cmd *cobra.Command, args []string) error {
	id := args[0]
	if revisionName == "" && catalogPath == "" && nickname == "" {
		return errors.New("nothing to set; pass --revision, --catalog or --nickname")
	}

	if revisionName != "" {
		if _, err := catalog.ParseRevision(revisionName); err != nil && cfg.Defaults.CatalogDir == "" {
			return err
		}
		cfg.SetControllerRevision(id, revisionName)
	}
	if catalogPath != "" {
		if _, err := catalog.LoadFile(catalogPath); err != nil {
			return err
		}
		abs, err := filepath.Abs(catalogPath)
		if err != nil {
			return fmt.Errorf("failed to resolve catalog path: %w", err)
		}
		cfg.SetControllerCatalog(id, abs)
	}
	if nickname != "" {
		cfg.SetControllerNickname(id, nickname)
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	logging.Info("Controller updated", zap.String("controller", id), zap.String("revision", revisionName), zap.String("catalog", catalogPath))

	fmt.Fprintf(cmd.OutOrStdout(), "Updated controller %s\n", id)
	return nil
}

var controllerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known controllers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Controllers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No controllers configured. Use 'gecko-decode controller set' to add one.")
			return nil
		}

		ids := make([]string, 0, len(cfg.Controllers))
		for id := range cfg.Controllers {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNICKNAME\tREVISION\tCATALOG\tLAST DECODED")
		for _, id := range ids {
			c := cfg.Controllers[id]
			last := "never"
			if !c.LastDecoded.IsZero() {
				last = fmt.Sprintf("%s (%d bytes)", c.LastDecoded.Format(time.RFC3339), c.LastConsumed)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, c.Nickname, c.Revision, c.Catalog, last)
		}
		return tw.Flush()
	},
}

// flagOrDefault returns the flag value when set on the command line, then the
// config default, then the flag's own default.
func flagOrDefault(cmd *cobra.Command, name, value, configured string) string {
	if cmd.Flags().Changed(name) || configured == "" {
		return value
	}
	return configured
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && output.IsTerminal(f)
}
