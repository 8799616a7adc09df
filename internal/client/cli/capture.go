package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/dmitrijs2005/classkeeper/internal/filex"
)

// readMedia is a test seam for filex.ReadMedia.
var readMedia = filex.ReadMedia

// Capture records one piece of evidence: a media file plus activity name,
// tagged students and an optional comment. Online saves go straight to the
// remote stores; offline saves land in the local queue.
func (a *App) Capture(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to the media file", os.Stdout)
	if err != nil {
		return err
	}

	media, contentType, err := readMedia(path)
	if err != nil {
		printlnFn("Cannot read media:", err.Error())
		return err
	}

	activity, err := getSimpleText(a.reader, "Activity name", os.Stdout)
	if err != nil {
		return err
	}

	studentIDs, err := getCommaSeparated(a.reader, "Student ids (comma separated, optional)", os.Stdout)
	if err != nil {
		return err
	}

	comment, err := getMultiline(a.reader, "Comment (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.recorder.Save(ctx, media, contentType, activity, studentIDs, comment); err != nil {
		switch {
		case errors.Is(err, common.ErrSyncFailure):
			printlnFn("Upload failed, nothing was saved. Check connectivity and try again.")
		case errors.Is(err, common.ErrPayloadTooLarge):
			printlnFn("Media is too large to upload.")
		default:
			printlnFn("Capture failed:", err.Error())
		}
		return err
	}

	if a.monitor.IsOnline() {
		printlnFn("Saved and uploaded.")
	} else {
		printlnFn("Saved to the offline queue; it will upload when connectivity returns.")
	}
	return nil
}
