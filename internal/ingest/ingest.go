// Package ingest is the ingest orchestrator of spec.md §4.7: a
// directory is walked, candidate files are fanned out to a worker
// pool, and each successful fingerprinting result is inserted into the
// catalog and marked fingerprinted. It replaces the teacher's
// microphone-oriented eureka.Recognize path for the ingest side with a
// Dejavu-faithful fingerprint_directory/fingerprint_worker flow
// (dejavu3.py), reimplemented as a Go worker pool + result channel per
// spec.md §5, reporting progress with the teacher's own (previously
// unwired) schollz/progressbar dependency.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/media-luna/eureka/internal/audio"
	"github.com/media-luna/eureka/internal/catalog"
	"github.com/media-luna/eureka/internal/dsp"
	"github.com/media-luna/eureka/internal/fingerprint"
	"github.com/media-luna/eureka/internal/logx"
)

// Params bundles the knobs ingestion needs beyond the catalog itself.
type Params struct {
	Extensions  []string // default {"wav"}; matched case-insensitively
	WorkerCount int      // 0 means runtime.NumCPU(), floor 1
	LimitSecs   float64  // 0 means no truncation
	DSP         dsp.Params
	Fingerprint fingerprint.Params
}

// DefaultParams mirrors config.Default().
func DefaultParams() Params {
	return Params{
		Extensions:  []string{"wav"},
		DSP:         dsp.DefaultParams(),
		Fingerprint: fingerprint.DefaultParams(),
	}
}

// Stats summarizes one Directory call.
type Stats struct {
	Discovered int
	Skipped    int // already fingerprinted, by digest
	Ingested   int
	Failed     int
}

// workResult is what one worker hands back to the coordinator; it
// never shares memory with other workers (spec.md §5).
type workResult struct {
	path     string
	name     string
	hashes   []catalog.Hash
	fileSHA1 string
	err      error
}

// Directory recursively fingerprints every file under root whose
// extension matches params.Extensions and whose content digest is not
// already present among fingerprinted records, per spec.md §4.7's
// state machine: discovered -> queued -> decoding -> fingerprinting ->
// inserted_record -> hashes_written -> marked_fingerprinted. Worker
// failures are logged and skipped; they never abort the run.
func Directory(ctx context.Context, cat catalog.Catalog, root string, params Params) (Stats, error) {
	var stats Stats

	existing, err := cat.ListFingerprintedRecords(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "list fingerprinted records")
	}
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		known[strings.ToUpper(r.FileSHA1)] = struct{}{}
	}

	paths, err := findFiles(root, params.Extensions)
	if err != nil {
		return stats, errors.Wrap(err, "walk ingest directory")
	}
	stats.Discovered = len(paths)

	workers := params.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan workResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- fingerprintFile(path, params)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	bar := progressbar.Default(int64(len(paths)), "fingerprinting")

	for res := range results {
		bar.Add(1)

		if res.err != nil {
			logx.Error("fingerprinting failed", "path", res.path, "err", res.err)
			stats.Failed++
			continue
		}

		upper := strings.ToUpper(res.fileSHA1)
		if _, dup := known[upper]; dup {
			stats.Skipped++
			continue
		}

		recordID, err := cat.InsertRecord(ctx, res.name, res.fileSHA1)
		if err != nil {
			logx.Error("insert record failed", "path", res.path, "err", err)
			stats.Failed++
			continue
		}

		if err := cat.InsertHashes(ctx, recordID, res.hashes); err != nil {
			logx.Error("insert hashes failed", "path", res.path, "err", err)
			stats.Failed++
			continue
		}

		if err := cat.MarkFingerprinted(ctx, recordID); err != nil {
			logx.Error("mark fingerprinted failed", "path", res.path, "err", err)
			stats.Failed++
			continue
		}

		known[upper] = struct{}{}
		stats.Ingested++
	}

	return stats, nil
}

// fingerprintFile decodes one file, fingerprints every channel, and
// deduplicates hashes across channels (spec.md invariant 3). A decode
// failure is returned in the result's err field, which the coordinator
// logs and counts as failed; a channel shorter than one FFT window
// contributes zero hashes rather than an error, per spec.md §7's
// EmptySignal policy.
func fingerprintFile(path string, params Params) workResult {
	decoded, err := audio.Decode(path, params.LimitSecs)
	if err != nil {
		return workResult{path: path, err: err}
	}

	name := recordNameFromPath(path)

	var all []fingerprint.Hash
	for _, channel := range decoded.Channels {
		if len(channel) < params.DSP.NFFT {
			continue // EmptySignal: zero hashes for this channel, not an error
		}
		spectrogram := dsp.Spectrogram(channel, decoded.SampleRate, params.DSP)
		peaks := dsp.ExtractPeaks(spectrogram, params.DSP)
		all = append(all, fingerprint.Generate(peaks, params.Fingerprint)...)
	}

	deduped := fingerprint.Dedup(all)
	hashes := make([]catalog.Hash, len(deduped))
	for i, h := range deduped {
		hashes[i] = catalog.Hash{Hash: h.Hash, Offset: h.AnchorTime}
	}

	return workResult{
		path:     path,
		name:     name,
		hashes:   hashes,
		fileSHA1: decoded.FileSHA1,
	}
}

func recordNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func findFiles(root string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = []string{"wav"}
	}
	wanted := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		wanted[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := wanted[ext]; ok {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
