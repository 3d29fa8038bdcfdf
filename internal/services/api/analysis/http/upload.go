package http

import (
	"io"

	"orderlens/internal/core/normalize"
	perr "orderlens/internal/platform/errors"
)

// readTranscript reads at most max bytes of an upload and decodes it to UTF-8
func readTranscript(r io.Reader, max int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read upload")
	}
	if int64(len(b)) > max {
		return "", perr.WithField(perr.InvalidArgf("file exceeds %d bytes", max), "file")
	}
	text, err := normalize.Decode(b)
	if err != nil {
		return "", perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "file is neither UTF-8 nor EUC-KR text"), "file")
	}
	return text, nil
}
