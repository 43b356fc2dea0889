package batch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

// ConflictPolicy governs what happens when a task's destination already
// exists.
type ConflictPolicy string

const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictOverwrite ConflictPolicy = "overwrite"
	ConflictNewer     ConflictPolicy = "newer"
)

// Prompter asks an interactive y/N question; used only for single-file
// commands with no explicit conflict flag.
type Prompter func(question string) bool

// Options configures one controller run.
type Options struct {
	Conflict    ConflictPolicy
	Force       bool // suppresses interactive prompt; implies overwrite if Conflict is unset
	Interactive bool // only meaningful for a single-file command
	Prompt      Prompter
}

func (o Options) effectivePolicy() ConflictPolicy {
	if o.Conflict != "" {
		return o.Conflict
	}
	if o.Force {
		return ConflictOverwrite
	}
	return ConflictSkip
}

// Summary tallies task outcomes for the exit-code and final report.
type Summary struct {
	Completed int
	Skipped   int
	Errors    int
}

// ExitCode is 1 iff any task ended in Error(*).
func (s Summary) ExitCode() int {
	if s.Errors > 0 {
		return 1
	}
	return 0
}

// Controller drives one batch's task list to completion, persisting
// progress as it goes.
type Controller struct {
	Resolver *pathresolve.Resolver
	Ops      *pathops.Service
	Upload   *upload.Engine
	Download *download.Engine
	Log      logrus.FieldLogger
}

// New builds a batch Controller.
func New(resolver *pathresolve.Resolver, ops *pathops.Service, up *upload.Engine, dl *download.Engine, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{Resolver: resolver, Ops: ops, Upload: up, Download: dl, Log: log}
}

// throttle decides whether to persist progress now: every task
// transition, or every >=10 chunks / >=5s of chunk progress within a task.
type throttle struct {
	lastSavedChunk int
	lastSaveTime   time.Time
}

func (t *throttle) shouldSave(currentChunk int) bool {
	return currentChunk-t.lastSavedChunk >= 10 || time.Since(t.lastSaveTime) >= 5*time.Second
}

func (t *throttle) mark(currentChunk int) {
	t.lastSavedChunk = currentChunk
	t.lastSaveTime = time.Now()
}

func (c *Controller) persist(id string, state State) {
	if err := Save(id, state); err != nil {
		c.Log.WithError(err).Warn("batch: failed to persist state (best-effort)")
	}
}

// RunUpload executes every non-terminal task in state against its own
// RemotePath, resolving each task's remote parent (creating it if needed), applying the
// conflict policy, and driving the upload engine with chunk-level resume.
func (c *Controller) RunUpload(ctx context.Context, id string, state *State, opts Options) (Summary, error) {
	var summary Summary

	for i := range state.Tasks {
		task := &state.Tasks[i]

		if task.IsTerminal() {
			if task.Status == StatusCompleted {
				summary.Completed++
			} else {
				summary.Skipped++
			}
			continue
		}

		remoteDir := filepath.ToSlash(filepath.Dir(task.RemotePath))
		remoteName := filepath.Base(task.RemotePath)

		parentID, err := c.Ops.MkdirAll(ctx, remoteDir, nil, nil)
		if err != nil {
			task.Status = StatusError
			task.Reason = string(ErrorReasonParent)
			summary.Errors++
			c.persist(id, *state)
			continue
		}

		proceed, skipReason, remoteModTime, err := c.resolveUploadConflict(ctx, parentID, remoteName, task.LocalPath, opts)
		if err != nil {
			task.Status = StatusError
			task.Reason = string(ErrorReasonUpload)
			summary.Errors++
			c.persist(id, *state)
			continue
		}
		if !proceed {
			task.Status = StatusSkipped
			task.Reason = string(skipReason)
			summary.Skipped++
			c.persist(id, *state)
			continue
		}

		task.Status = StatusUploading
		c.persist(id, *state)

		th := &throttle{lastSavedChunk: -1, lastSaveTime: time.Now()}

		in := upload.Input{
			LocalPath: task.LocalPath,
			ParentID:  parentID,
			Name:      remoteName,
			OnProgress: func(chunksDone, totalChunks int, bytesDone, totalBytes uint64) {
				if th.shouldSave(chunksDone) {
					task.LastChunk = chunksDone - 1
					th.mark(chunksDone)
					c.persist(id, *state)
				}
			},
			OnStart: func(fileID, uploadKey string) {
				task.FileID = fileID
				task.UploadKey = uploadKey
				c.persist(id, *state)
			},
		}
		if task.IsResumable() {
			fid, uk := task.FileID, task.UploadKey
			in.FileID = &fid
			in.UploadKey = &uk
			in.ResumeFromChunk = task.LastChunk + 1
		}
		_ = remoteModTime

		res, err := c.Upload.Upload(ctx, in)
		if err != nil {
			var cuf *upload.ChunkUploadFailedError
			if errors.As(err, &cuf) {
				task.FileID = cuf.FileID
				task.UploadKey = cuf.UploadKey
				task.LastChunk = cuf.LastSuccessfulChunk
				task.Status = StatusInterrupted
				c.persist(id, *state)
				summary.Errors++
				continue
			}
			task.Status = StatusError
			task.Reason = string(ErrorReasonUpload)
			summary.Errors++
			c.persist(id, *state)
			continue
		}

		task.FileID = res.FileID
		task.UploadKey = ""
		task.LastChunk = -1
		task.Status = StatusCompleted
		summary.Completed++
		c.persist(id, *state)
	}

	if summary.Errors == 0 {
		_ = Delete(id)
	}
	return summary, nil
}

// resolveUploadConflict applies the conflict policy for an upload task
// whose destination may already exist under parentID.
func (c *Controller) resolveUploadConflict(ctx context.Context, parentID, name, localPath string, opts Options) (proceed bool, reason SkipReason, remoteModTime int64, err error) {
	existing, found, err := c.findExistingFile(ctx, parentID, name)
	if err != nil {
		return false, "", 0, err
	}
	if !found {
		return true, "", 0, nil
	}

	policy := opts.effectivePolicy()
	switch policy {
	case ConflictOverwrite:
		return true, "", existing.LastModifiedMs, nil
	case ConflictNewer:
		info, statErr := os.Stat(localPath)
		if statErr != nil || existing.LastModifiedMs == 0 {
			return false, SkipNoTimestamp, 0, nil
		}
		localModMs := info.ModTime().UnixMilli()
		if localModMs > existing.LastModifiedMs {
			return true, "", existing.LastModifiedMs, nil
		}
		return false, SkipNewer, 0, nil
	case ConflictSkip:
		if opts.Interactive && !opts.Force && opts.Prompt != nil {
			if opts.Prompt("overwrite " + name + "?") {
				return true, "", existing.LastModifiedMs, nil
			}
			return false, SkipUserDeclined, 0, nil
		}
		return false, SkipConflict, 0, nil
	default:
		return false, SkipConflict, 0, nil
	}
}

func (c *Controller) findExistingFile(ctx context.Context, parentID, name string) (model.FileHandle, bool, error) {
	files, err := c.Ops.Directory.ListFiles(ctx, parentID)
	if err != nil {
		return model.FileHandle{}, false, err
	}
	for _, f := range files {
		if f.Name == name {
			return f, true, nil
		}
	}
	return model.FileHandle{}, false, nil
}

// RunDownload executes every non-terminal download task.
func (c *Controller) RunDownload(ctx context.Context, id string, state *State, opts Options) (Summary, error) {
	var summary Summary

	for i := range state.Tasks {
		task := &state.Tasks[i]

		if task.IsTerminal() {
			if task.Status == StatusCompleted {
				summary.Completed++
			} else {
				summary.Skipped++
			}
			continue
		}

		proceed, skipReason, err := c.resolveDownloadConflict(task, opts)
		if err != nil {
			task.Status = StatusError
			task.Reason = string(ErrorReasonUpload)
			summary.Errors++
			c.persist(id, *state)
			continue
		}
		if !proceed {
			task.Status = StatusSkipped
			task.Reason = string(skipReason)
			summary.Skipped++
			c.persist(id, *state)
			continue
		}

		task.Status = StatusUploading // reused as the generic "in progress" value
		c.persist(id, *state)

		if err := os.MkdirAll(filepath.Dir(task.LocalPath), 0o755); err != nil {
			task.Status = StatusError
			task.Reason = string(ErrorReasonUpload)
			summary.Errors++
			c.persist(id, *state)
			continue
		}

		th := &throttle{lastSavedChunk: -1, lastSaveTime: time.Now()}
		_, err = c.Download.Download(ctx, download.Input{
			FileID:          task.RemoteUUID,
			DestinationPath: task.LocalPath,
			OnProgress: func(chunksDone, totalChunks int, bytesDone, totalBytes uint64) {
				if th.shouldSave(chunksDone) {
					task.LastChunk = chunksDone - 1
					th.mark(chunksDone)
					c.persist(id, *state)
				}
			},
		})
		if err != nil {
			task.Status = StatusError
			task.Reason = string(ErrorReasonUpload)
			summary.Errors++
			c.persist(id, *state)
			continue
		}

		task.LastChunk = -1
		task.Status = StatusCompleted
		summary.Completed++
		c.persist(id, *state)
	}

	if summary.Errors == 0 {
		_ = Delete(id)
	}
	return summary, nil
}

func (c *Controller) resolveDownloadConflict(task *Task, opts Options) (proceed bool, reason SkipReason, err error) {
	info, statErr := os.Stat(task.LocalPath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return true, "", nil
		}
		return false, "", statErr
	}

	policy := opts.effectivePolicy()
	switch policy {
	case ConflictOverwrite:
		return true, "", nil
	case ConflictNewer:
		if task.RemoteModificationTime == nil {
			return false, SkipNoTimestamp, nil
		}
		localModMs := info.ModTime().UnixMilli()
		if *task.RemoteModificationTime > localModMs {
			return true, "", nil
		}
		return false, SkipNewer, nil
	case ConflictSkip:
		if opts.Interactive && !opts.Force && opts.Prompt != nil {
			if opts.Prompt("overwrite " + task.LocalPath + "?") {
				return true, "", nil
			}
			return false, SkipUserDeclined, nil
		}
		return false, SkipConflict, nil
	default:
		return false, SkipConflict, nil
	}
}

// --- Task-list construction -------------------------------------------------

// BuildUploadTasks expands sources via local glob, walking directories
// depth-first when recursive, filtering by name, and applying the
// trailing-slash target rule: a source directory ending in "/"
// spills its contents into targetRemotePath; otherwise its basename is
// created inside targetRemotePath.
func BuildUploadTasks(sources []string, targetRemotePath string, recursive bool, filter Filter) ([]Task, error) {
	var tasks []Task
	target := strings.TrimRight(targetRemotePath, "/")
	if target == "" {
		target = "/"
	}

	for _, rawSource := range sources {
		spill := strings.HasSuffix(rawSource, "/")
		matches, err := filepath.Glob(strings.TrimRight(rawSource, "/"))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				if !filter.Allows(filepath.Base(m)) {
					continue
				}
				tasks = append(tasks, NewPendingTask(m).withRemote(joinRemote(target, filepath.Base(m))))
				continue
			}

			base := filepath.Base(m)
			rootRemote := target
			if !spill {
				rootRemote = joinRemote(target, base)
			}

			if !recursive {
				entries, err := os.ReadDir(m)
				if err != nil {
					return nil, err
				}
				for _, e := range entries {
					if e.IsDir() || !filter.Allows(e.Name()) {
						continue
					}
					tasks = append(tasks, NewPendingTask(filepath.Join(m, e.Name())).withRemote(joinRemote(rootRemote, e.Name())))
				}
				continue
			}

			err = filepath.WalkDir(m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if !filter.Allows(d.Name()) {
					return nil
				}
				rel, err := filepath.Rel(m, p)
				if err != nil {
					return err
				}
				remote := joinRemote(rootRemote, filepath.ToSlash(rel))
				tasks = append(tasks, NewPendingTask(p).withRemote(remote))
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return tasks, nil
}

func (t Task) withRemote(remotePath string) Task {
	t.RemotePath = remotePath
	return t
}

func joinRemote(base, name string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + name
	}
	return base + "/" + name
}
