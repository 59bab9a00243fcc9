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

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// FileOracle implements the file-mediated request/response protocol with the
// external retrosynthesis worker.  Request and response files are the only
// shared state; access is serialized with exclusive advisory locks.
//
// The round-trip blocks until the worker produces a response that echoes the
// request: one line per molecule, each repeating that molecule's SMILES.  A
// bare line count is not enough — consecutive batches often share a size, and
// a response left on disk from the previous batch must never be accepted for
// the current one.  With Deadline == 0 the wait is unbounded, matching the
// historic single-machine behavior; a positive deadline turns a hung worker
// into a fatal oracle-unavailable error.
type FileOracle struct {
	senderPath   string
	receiverPath string
	pollInterval time.Duration
	deadline     time.Duration
	log          logging.Logger
}

// NewFileOracle constructs the requester side of the protocol.  dir is the
// run's output directory; sender and receiver are file names within it.
func NewFileOracle(dir, sender, receiver string, pollInterval, deadline time.Duration, log logging.Logger) (*FileOracle, error) {
	if sender == "" || receiver == "" || sender == receiver {
		return nil, errors.New(errors.ErrCodeValidation, "oracle requires two distinct communication files")
	}
	if pollInterval <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "oracle poll interval must be positive")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FileOracle{
		senderPath:   filepath.Join(dir, sender),
		receiverPath: filepath.Join(dir, receiver),
		pollInterval: pollInterval,
		deadline:     deadline,
		log:          log,
	}, nil
}

// Score runs one synchronous round-trip:
//
//  1. truncate the response file;
//  2. tight-poll an exclusive lock on the request file and write one
//     canonical SMILES per line;
//  3. poll the response file under an exclusive lock until it holds one line
//     per requested molecule, each echoing that molecule's SMILES, sleeping
//     pollInterval between attempts;
//  4. parse each line's third whitespace-delimited field as the
//     synthesizability verdict and return the mean.
func (o *FileOracle) Score(ctx context.Context, smiles []string) (float64, error) {
	if len(smiles) == 0 {
		return 0, nil
	}

	var deadlineC <-chan time.Time
	if o.deadline > 0 {
		timer := time.NewTimer(o.deadline)
		defer timer.Stop()
		deadlineC = timer.C
	}

	if err := os.WriteFile(o.receiverPath, nil, 0o644); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot truncate response file").
			WithDetail(o.receiverPath)
	}

	start := time.Now()

	// Write side: tight poll, no sleep.
	for {
		if err := expired(ctx, deadlineC); err != nil {
			return 0, err
		}
		written, err := o.writeRequest(smiles)
		if err != nil {
			return 0, err
		}
		if written {
			break
		}
	}

	o.log.Debug("oracle request written",
		logging.Int("molecules", len(smiles)),
		logging.String("file", o.senderPath),
	)

	// Read side: poll with a fixed sleep between attempts.
	for {
		verdicts, ready, err := o.readResponse(smiles)
		if err != nil {
			return 0, err
		}
		if ready {
			sum := 0
			for _, v := range verdicts {
				sum += v
			}
			score := float64(sum) / float64(len(verdicts))
			o.log.Info("oracle round-trip complete",
				logging.Int("molecules", len(smiles)),
				logging.Float64("syn_rate", score),
				logging.Duration("elapsed", time.Since(start)),
			)
			return score, nil
		}

		if err := expired(ctx, deadlineC); err != nil {
			return 0, err
		}
		select {
		case <-ctx.Done():
			return 0, errors.Wrap(ctx.Err(), errors.ErrCodeOracleUnavailable, "oracle round-trip canceled")
		case <-deadlineC:
			return 0, errors.New(errors.ErrCodeOracleUnavailable, "oracle deadline expired").
				WithDetail(fmt.Sprintf("deadline=%s molecules=%d", o.deadline, len(smiles)))
		case <-time.After(o.pollInterval):
		}
	}
}

func expired(ctx context.Context, deadlineC <-chan time.Time) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrCodeOracleUnavailable, "oracle round-trip canceled")
	case <-deadlineC:
		return errors.New(errors.ErrCodeOracleUnavailable, "oracle deadline expired")
	default:
		return nil
	}
}

// writeRequest attempts one locked write of the request file.  Returns false
// without error when the worker currently holds the lock.
func (o *FileOracle) writeRequest(smiles []string) (bool, error) {
	f, err := os.OpenFile(o.senderPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot open request file").
			WithDetail(o.senderPath)
	}
	defer f.Close()

	locked, err := tryLockExclusive(f)
	if err != nil {
		return false, err
	}
	if !locked {
		return false, nil
	}
	defer unlock(f)

	if err := f.Truncate(0); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot truncate request file")
	}

	w := bufio.NewWriter(f)
	for _, s := range smiles {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot write request file")
		}
	}
	if err := w.Flush(); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot write request file")
	}
	return true, nil
}

// readResponse attempts one locked read of the response file.  ready is false
// when the lock is held elsewhere, the line count does not yet match, or the
// lines echo molecules other than the requested batch (a stale response the
// worker has not yet overwritten).
func (o *FileOracle) readResponse(request []string) ([]int, bool, error) {
	f, err := os.OpenFile(o.receiverPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot open response file").
			WithDetail(o.receiverPath)
	}
	defer f.Close()

	locked, err := tryLockExclusive(f)
	if err != nil {
		return nil, false, err
	}
	if !locked {
		return nil, false, nil
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
		return nil, false, errors.Wrap(err, errors.ErrCodeOracleUnavailable, "cannot read response file")
	}

	if len(lines) != len(request) {
		return nil, false, nil
	}

	verdicts := make([]int, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, false, errors.New(errors.ErrCodeOracleMalformed, "response line has fewer than three fields").
				WithDetail(line)
		}
		// A line answering a different molecule is left over from an earlier
		// batch; keep polling until the worker overwrites it.
		if fields[1] != request[i] {
			return nil, false, nil
		}
		v, err := parseVerdict(fields[2], line)
		if err != nil {
			return nil, false, err
		}
		verdicts[i] = v
	}
	return verdicts, true, nil
}

// parseVerdict interprets the synthesizability field of one response line:
// a True/False or integer literal.
func parseVerdict(field, line string) (int, error) {
	switch field {
	case "True":
		return 1, nil
	case "False":
		return 0, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, errors.New(errors.ErrCodeOracleMalformed, "response verdict is not a boolean or integer literal").
			WithDetail(line)
	}
	if n != 0 {
		return 1, nil
	}
	return 0, nil
}

//Personal.AI order the ending
