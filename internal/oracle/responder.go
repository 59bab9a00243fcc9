package oracle

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Responder is the worker side of the file protocol: it watches the request
// file, scores each SMILES with a pluggable scorer, and writes one
// `<idx> <smiles> <True|False>` line per request line to the response file.
//
// Serving is idempotent and content-aware: a request is answered only while
// the response file does not already echo this exact batch, line for line.
// Restarts and watcher double-fires are harmless, and a leftover response for
// a previous batch of the same size never suppresses serving the new one.
type Responder struct {
	dir          string
	senderName   string
	receiverName string
	pollFallback time.Duration
	score        ScoreFunc
	log          logging.Logger
}

// NewResponder constructs a worker for the given run directory.
func NewResponder(dir, sender, receiver string, pollFallback time.Duration, score ScoreFunc, log logging.Logger) (*Responder, error) {
	if sender == "" || receiver == "" || sender == receiver {
		return nil, errors.New(errors.ErrCodeValidation, "responder requires two distinct communication files")
	}
	if score == nil {
		return nil, errors.New(errors.ErrCodeValidation, "score function is required")
	}
	if pollFallback <= 0 {
		pollFallback = time.Second
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Responder{
		dir:          dir,
		senderName:   sender,
		receiverName: receiver,
		pollFallback: pollFallback,
		score:        score,
		log:          log,
	}, nil
}

// Run serves requests until ctx is done.  Filesystem notifications trigger
// immediate serving; a periodic poll covers platforms and edge cases the
// watcher misses.
func (r *Responder) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.log.Warn("filesystem watcher unavailable, using polling only", logging.Err(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(r.dir); err != nil {
			r.log.Warn("cannot watch run directory, using polling only",
				logging.String("dir", r.dir), logging.Err(err))
			watcher.Close()
			watcher = nil
		}
	}

	ticker := time.NewTicker(r.pollFallback)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var watchErrs chan error
	if watcher != nil {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	r.serve()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if filepath.Base(ev.Name) == r.senderName && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				r.serve()
			}
		case err := <-watchErrs:
			r.log.Warn("watcher error", logging.Err(err))
		case <-ticker.C:
			r.serve()
		}
	}
}

// serve runs ServeOnce and logs failures without stopping the worker.
func (r *Responder) serve() {
	answered, err := r.ServeOnce()
	if err != nil {
		r.log.Error("failed to serve oracle request", logging.Err(err))
		return
	}
	if answered > 0 {
		r.log.Info("oracle request served", logging.Int("molecules", answered))
	}
}

// ServeOnce answers the pending request, if any.  It returns the number of
// molecules scored; zero means there was nothing to do.
func (r *Responder) ServeOnce() (int, error) {
	request, err := r.readRequest()
	if err != nil || len(request) == 0 {
		return 0, err
	}

	answered, err := r.responseAnswers(request)
	if err != nil || answered {
		return 0, err
	}

	lines := make([]string, len(request))
	for i, smiles := range request {
		verdict := "False"
		if r.score(smiles) {
			verdict = "True"
		}
		lines[i] = fmt.Sprintf("%d %s %s", i, smiles, verdict)
	}

	if err := r.writeResponse(lines); err != nil {
		return 0, err
	}
	return len(request), nil
}

func (r *Responder) readRequest() ([]string, error) {
	path := filepath.Join(r.dir, r.senderName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot open request file").WithDetail(path)
	}
	defer f.Close()

	locked, err := tryLockExclusive(f)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, nil
	}
	defer unlock(f)

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot read request file")
	}
	return lines, nil
}

// responseAnswers reports whether the response file already answers the given
// request: one line per molecule, each echoing its index and SMILES.  A
// response for an earlier batch that merely matches in length does not count.
func (r *Responder) responseAnswers(request []string) (bool, error) {
	path := filepath.Join(r.dir, r.receiverName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot open response file").WithDetail(path)
	}
	defer f.Close()

	locked, err := tryLockExclusive(f)
	if err != nil || !locked {
		return false, err
	}
	defer unlock(f)

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot read response file")
	}

	if len(lines) != len(request) {
		return false, nil
	}
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != strconv.Itoa(i) || fields[1] != request[i] {
			return false, nil
		}
	}
	return true, nil
}

func (r *Responder) writeResponse(lines []string) error {
	path := filepath.Join(r.dir, r.receiverName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot open response file").WithDetail(path)
	}
	defer f.Close()

	for {
		locked, err := tryLockExclusive(f)
		if err != nil {
			return err
		}
		if locked {
			break
		}
	}
	defer unlock(f)

	if err := f.Truncate(0); err != nil {
		return errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot truncate response file")
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot write response file")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot write response file")
	}
	return nil
}

//Personal.AI order the ending
