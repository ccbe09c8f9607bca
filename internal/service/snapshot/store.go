package snapshot

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DefaultFileName is the snapshot file name inside the output directory.
const DefaultFileName = "feeds-snapshot.csv"

// Store appends encoded rows to the snapshot file, creating it with a header on first use.
type Store struct {
	path    string
	encoder *Encoder
	lock    bool

	writeFn func(f *os.File, data []byte) error
}

func NewStore(path string, encoder *Encoder, useLock bool) *Store {
	if encoder == nil {
		encoder = NewEncoder(false)
	}

	return &Store{
		path:    path,
		encoder: encoder,
		lock:    useLock,
		writeFn: writeAndClose,
	}
}

func (s *Store) Path() string {
	return s.path
}

// Write persists rows in a single write call and reports whether the file was created.
func (s *Store) Write(rows []FeedRow) (created bool, err error) {
	if s.lock {
		fileLock := flock.New(s.path + ".lock")
		if err := fileLock.Lock(); err != nil {
			return false, Classify(KindFilesystem, errors.Wrapf(err, "failed to lock %s", s.path))
		}

		defer func() {
			err = multierr.Append(err, Classify(KindFilesystem, fileLock.Unlock()))
		}()
	}

	if _, statErr := os.Stat(s.path); statErr != nil {
		if !os.IsNotExist(statErr) {
			return false, Classify(KindFilesystem, errors.Wrapf(statErr, "failed to stat %s", s.path))
		}

		created, err = s.create(rows)
		if err == nil || !os.IsExist(errors.Cause(err)) {
			return created, Classify(KindFilesystem, err)
		}

		// someone else created the file in between, append like they did not exist
	}

	return false, Classify(KindFilesystem, s.append(rows))
}

func (s *Store) create(rows []FeedRow) (bool, error) {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, errors.Wrapf(err, "failed to ensure directory %s", dir)
		}
	}

	data, err := s.encoder.Encode(rows, true)
	if err != nil {
		return false, err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return false, errors.WithStack(err)
	}

	if err := s.writeFn(f, data); err != nil {
		// a partial file would make later runs append rows without a header
		err = multierr.Append(err, os.Remove(s.path))
		return false, errors.Wrapf(err, "failed to write %s", s.path)
	}

	return true, nil
}

func (s *Store) append(rows []FeedRow) error {
	if len(rows) == 0 {
		return nil
	}

	data, err := s.encoder.Encode(rows, false)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s for append", s.path)
	}

	if err := s.writeFn(f, data); err != nil {
		return errors.Wrapf(err, "failed to append to %s", s.path)
	}

	return nil
}

func writeAndClose(f *os.File, data []byte) (err error) {
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	_, err = f.Write(data)
	return err
}
