package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/syscov/internal/archive"
)

// ArchiveListing is the JSON payload of show without entry names.
type ArchiveListing struct {
	Runs    []RunView   `json:"runs"`
	Entries []EntryView `json:"entries"`
}

// RunView is one recorded run.
type RunView struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	StartedAt     time.Time `json:"started_at"`
	Channel       string    `json:"channel"`
	Seed          uint64    `json:"seed"`
	ConfigHash    string    `json:"config_hash"`
	EngineVersion string    `json:"engine_version"`
}

// EntryView is one stored entry. Data is omitted in listings.
type EntryView struct {
	Name  string    `json:"name"`
	RunID string    `json:"run_id,omitempty"`
	Seq   int64     `json:"seq,omitempty"`
	Rows  int       `json:"rows"`
	Cols  int       `json:"cols"`
	Data  []float64 `json:"data,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <archive> [name...]",
		Short: "List archive entries or print named entries",
		Long: `Without names, list the runs recorded in an archive and every stored entry
with its shape. With names, print those entries in full.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, path string, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	arch, err := openArchive(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open archive", err, nil)
	}
	defer arch.Close()
	ctx := cmd.Context()

	if len(names) == 0 {
		listing, err := listArchive(cmd, arch)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read archive", err, nil)
		}
		if formatter.IsJSON() {
			return formatter.Success(listing)
		}
		writeListing(formatter.Writer, listing)
		return nil
	}

	views := make([]EntryView, 0, len(names))
	for _, name := range names {
		e, err := arch.Get(ctx, name)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read entry", err, map[string]string{"name": name})
		}
		views = append(views, EntryView{Name: e.Name, Rows: e.Rows, Cols: e.Cols, Data: e.Data})
	}
	if formatter.IsJSON() {
		return formatter.Success(views)
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		writeEntry(formatter.Writer, v)
	}
	return nil
}

// openArchive opens an existing archive. archive.Open would create a
// missing one.
func openArchive(path string) (*archive.Archive, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return archive.Open(path)
}

func listArchive(cmd *cobra.Command, arch *archive.Archive) (ArchiveListing, error) {
	ctx := cmd.Context()
	runs, err := arch.Runs(ctx)
	if err != nil {
		return ArchiveListing{}, err
	}
	infos, err := arch.List(ctx)
	if err != nil {
		return ArchiveListing{}, err
	}
	listing := ArchiveListing{Runs: []RunView{}, Entries: []EntryView{}}
	for _, r := range runs {
		listing.Runs = append(listing.Runs, RunView{
			ID:            r.ID,
			Seq:           r.Seq,
			StartedAt:     r.StartedAt.UTC(),
			Channel:       r.Channel,
			Seed:          r.Seed,
			ConfigHash:    r.ConfigHash,
			EngineVersion: r.EngineVersion,
		})
	}
	for _, info := range infos {
		listing.Entries = append(listing.Entries, EntryView{
			Name:  info.Name,
			RunID: info.RunID,
			Seq:   info.Seq,
			Rows:  info.Rows,
			Cols:  info.Cols,
		})
	}
	return listing, nil
}

func writeListing(w io.Writer, l ArchiveListing) {
	fmt.Fprintf(w, "Runs (%d):\n", len(l.Runs))
	for _, r := range l.Runs {
		fmt.Fprintf(w, "  #%d %s %s channel=%s seed=%d\n",
			r.Seq, r.ID, r.StartedAt.Format(time.RFC3339), r.Channel, r.Seed)
	}
	fmt.Fprintf(w, "Entries (%d):\n", len(l.Entries))
	width := 0
	for _, e := range l.Entries {
		width = max(width, len(e.Name))
	}
	for _, e := range l.Entries {
		fmt.Fprintf(w, "  %-*s %s  checkpoint %d\n", width, e.Name, shape(e.Rows, e.Cols), e.Seq)
	}
}

func writeEntry(w io.Writer, v EntryView) {
	fmt.Fprintf(w, "%s %s\n", v.Name, shape(v.Rows, v.Cols))
	for r := range v.Rows {
		cells := make([]string, v.Cols)
		for c := range v.Cols {
			cells[c] = fmt.Sprintf("%12.6g", v.Data[r*v.Cols+c])
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, " "))
	}
}

func shape(rows, cols int) string {
	if rows == 1 {
		return fmt.Sprintf("[%d]", cols)
	}
	return fmt.Sprintf("[%dx%d]", rows, cols)
}
