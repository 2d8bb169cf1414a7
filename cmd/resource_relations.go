package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/pcs/internal/cib"
	"github.com/papapumpkin/pcs/internal/relation"
	"github.com/papapumpkin/pcs/internal/ui"
	"github.com/papapumpkin/pcs/internal/watch"
)

var errWatchNeedsFile = errors.New("--watch requires the CIB to be read from a file (--file)")

var resourceRelationsCmd = &cobra.Command{
	Use:   "relations <resource id>",
	Short: "Show how a resource relates to other resources",
	Long: `Display the relations of a resource as a tree: the group, clone or bundle it
belongs to, the resources it contains, and the ordering constraints and
ordering sets it takes part in. Entities reached more than once are expanded
only the first time and marked [shown elsewhere] afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runResourceRelations,
}

func init() {
	resourceRelationsCmd.Flags().Bool("full", false, "show resource agents and constraint ids")
	resourceRelationsCmd.Flags().StringP("output-format", "o", "text", "output format: text, json, yaml or toml")
	resourceRelationsCmd.Flags().Bool("watch", false, "render again whenever the CIB file changes")

	_ = viper.BindPFlag("full", resourceRelationsCmd.Flags().Lookup("full"))
	_ = viper.BindPFlag("output_format", resourceRelationsCmd.Flags().Lookup("output-format"))

	resourceCmd.AddCommand(resourceRelationsCmd)
}

// relationsView holds what one render of the relations tree needs.
type relationsView struct {
	source     cib.Source
	resourceID string
	full       bool
	format     ui.Format
	log        *zap.SugaredLogger
}

func runResourceRelations(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	format, err := ui.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	view := relationsView{
		source:     cibSource(cfg, cmd.InOrStdin(), log),
		resourceID: args[0],
		full:       cfg.Full,
		format:     format,
		log:        log,
	}
	view.warnUnused(printer)

	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		return view.render(cmd.Context(), printer)
	}
	path, err := watchPath(cfg.CIBFile)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalContext(cmd.Context(), printer)
	defer cancel()
	return view.watchFile(ctx, printer, path, cfg.WatchDebounce)
}

// watchPath returns the CIB file to watch. Only a named file can be watched.
func watchPath(cibFile string) (string, error) {
	if cibFile == "" || cibFile == "-" {
		return "", errWatchNeedsFile
	}
	return cibFile, nil
}

// warnUnused reports options that have no effect on the chosen output.
func (v relationsView) warnUnused(printer *ui.Printer) {
	if v.full && v.format != ui.FormatText {
		printer.Warn("--full only changes text output; " + string(v.format) + " output always carries full metadata")
	}
}

// render loads the CIB once and prints the relation tree of the resource.
func (v relationsView) render(ctx context.Context, printer *ui.Printer) error {
	doc, err := cib.Load(ctx, v.source)
	if err != nil {
		return err
	}
	tree, err := relation.ResourceRelationsTree(doc, v.resourceID, relation.WithLogger(v.log))
	if err != nil {
		return err
	}

	if v.format != ui.FormatText {
		return ui.EncodeTree(printer.Out, v.format, tree.ToMap())
	}
	lines, err := ui.RelationsTreeLines(tree, v.full)
	if err != nil {
		return err
	}
	printer.Tree(lines)
	return nil
}

// watchFile renders, then renders again after every change to path until
// ctx is canceled. Render failures are reported and do not stop the watch.
func (v relationsView) watchFile(ctx context.Context, printer *ui.Printer, path string, debounce time.Duration) error {
	w, err := watch.New(path, debounce, v.log)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	printer.Watching(path)
	if err := v.render(ctx, printer); err != nil {
		printer.Error(err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			printer.Reloaded(path)
			if err := v.render(ctx, printer); err != nil {
				printer.Error(err.Error())
			}
		}
	}
}
