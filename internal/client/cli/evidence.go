package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/classkeeper/internal/filex"
)

// List prints the teacher's synced evidence, newest first.
func (a *App) List(ctx context.Context) error {
	list, err := a.evidence.Browse(ctx, 0)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No evidence synced yet.")
		return nil
	}

	for _, e := range list {
		line := fmt.Sprintf("%s  %s  %s  %s", e.ID, e.CapturedAt.Format("2006-01-02 15:04"), e.FileType, e.ActivityName)
		if len(e.StudentIDs) > 0 {
			line += "  [" + strings.Join(e.StudentIDs, ", ") + "]"
		}
		printlnFn(line)
	}
	return nil
}

// Export downloads all evidence with metadata sidecars into an export
// directory under the current working directory.
func (a *App) Export(ctx context.Context) error {
	dirName, err := getSimpleText(a.reader, "Export directory name", os.Stdout)
	if err != nil {
		return err
	}
	if dirName == "" {
		dirName = "export"
	}

	dir, err := filex.EnsureSubDir(dirName)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	n, err := a.evidence.Export(ctx, dir)
	if err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Exported %d records to %s", n, dir))
	return nil
}

// DeleteEvidence removes a synced record together with its stored media.
func (a *App) DeleteEvidence(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Evidence id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.evidence.Delete(ctx, id); err != nil {
		printlnFn("Cannot delete:", err.Error())
		return err
	}

	printlnFn("Deleted.")
	return nil
}
