// Package batch implements the resumable batch controller: task
// list construction from a local glob/walk, durable per-task state, and
// conflict-policy-gated execution that resumes chunk-level on rerun.
package batch

// Kind distinguishes an upload batch from a download batch.
type Kind string

const (
	KindUpload   Kind = "upload"
	KindDownload Kind = "download"
)

// Status is a task's place in its lifecycle.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUploading   Status = "uploading" // also covers "downloading"
	StatusInterrupted Status = "interrupted"
	StatusCompleted   Status = "completed"
	StatusSkipped     Status = "skipped"
	StatusError       Status = "error"
)

// SkipReason and ErrorReason are recorded alongside Skipped/Error statuses so
// the batch summary can report why.
type SkipReason string

const (
	SkipConflict     SkipReason = "conflict"
	SkipNewer        SkipReason = "newer"
	SkipNoTimestamp  SkipReason = "no_timestamp"
	SkipUserDeclined SkipReason = "user_declined"
)

type ErrorReason string

const (
	ErrorReasonParent ErrorReason = "parent"
	ErrorReasonUpload ErrorReason = "upload"
)

// Task is one file's worth of work within a batch. Exactly one of
// RemotePath (upload target) / RemoteUUID (download source) is meaningful
// depending on Kind, mirroring the `remotePath|remoteUuid` persisted shape.
type Task struct {
	LocalPath  string `json:"localPath"`
	RemotePath string `json:"remotePath,omitempty"`
	RemoteUUID string `json:"remoteUuid,omitempty"`

	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"` // SkipReason or ErrorReason value

	FileID    string `json:"fileUuid,omitempty"`
	UploadKey string `json:"uploadKey,omitempty"`
	// LastChunk is -1 when no chunk has succeeded yet.
	LastChunk int `json:"lastChunk"`

	RemoteModificationTime *int64 `json:"remoteModificationTime,omitempty"`
}

// NewPendingTask builds a fresh task with the invariants of a fresh task: no
// file/upload key, LastChunk = -1.
func NewPendingTask(localPath string) Task {
	return Task{
		LocalPath: localPath,
		Status:    StatusPending,
		LastChunk: -1,
	}
}

// IsResumable reports whether t carries a resume triple: file_id and
// upload_key are non-null exactly when its status is Uploading or
// Interrupted.
func (t Task) IsResumable() bool {
	return (t.Status == StatusUploading || t.Status == StatusInterrupted) && t.FileID != "" && t.UploadKey != ""
}

// IsTerminal reports whether the task needs no further work this run.
func (t Task) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusSkipped
}
