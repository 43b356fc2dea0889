package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// This file declares the typed request/response shapes for every endpoint,
// and thin methods that drive them through PostJSON. Higher
// components (pathresolve, upload, download, pathops) call these rather
// than building JSON bodies themselves.

type AuthInfoRequest struct {
	Email string `json:"email"`
}

type AuthInfoResponse struct {
	AuthVersion int    `json:"authVersion"`
	Salt        string `json:"salt"`
}

func (c *Client) AuthInfo(ctx context.Context, email string) (AuthInfoResponse, error) {
	var out AuthInfoResponse
	err := c.PostJSON(ctx, "/v3/auth/info", AuthInfoRequest{Email: email}, &out)
	return out, err
}

type LoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	AuthVersion   int    `json:"authVersion"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

type LoginResponse struct {
	APIKey        string          `json:"apiKey"`
	MasterKeysRaw json.RawMessage `json:"masterKeys"`
	BaseFolderID  string          `json:"baseFolderUUID"`
	ID            string          `json:"id"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	err := c.PostJSON(ctx, "/v3/login", req, &out)
	return out, err
}

// MasterKeyEntries normalizes the wire shape of masterKeys, which the server
// sends either as a JSON array of envelope/plaintext entries or, for some
// legacy accounts, as a single pipe-joined string. Either shape yields the
// same list of entries, each handed to the caller for individual decoding.
func (r LoginResponse) MasterKeyEntries() ([]string, error) {
	if len(r.MasterKeysRaw) == 0 {
		return nil, nil
	}
	var asList []string
	if err := json.Unmarshal(r.MasterKeysRaw, &asList); err == nil {
		return asList, nil
	}
	var asString string
	if err := json.Unmarshal(r.MasterKeysRaw, &asString); err == nil {
		return strings.Split(asString, "|"), nil
	}
	return nil, fmt.Errorf("transport: masterKeys field is neither a string nor a list: %s", r.MasterKeysRaw)
}

type BaseFolderResponse struct {
	UUID string `json:"uuid"`
}

func (c *Client) UserBaseFolder(ctx context.Context) (BaseFolderResponse, error) {
	var out BaseFolderResponse
	err := c.PostJSON(ctx, "/v3/user/baseFolder", struct{}{}, &out)
	return out, err
}

type DirContentRequest struct {
	UUID        string `json:"uuid"`
	FoldersOnly bool   `json:"foldersOnly,omitempty"`
}

type WireFolder struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Parent       string `json:"parent"`
	Timestamp    int64  `json:"timestamp"`
	LastModified int64  `json:"lastModified"`
}

type WireFile struct {
	UUID     string `json:"uuid"`
	Metadata string `json:"metadata"`
	Parent   string `json:"parent"`
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Chunks   uint32 `json:"chunks"`
}

type DirContentResponse struct {
	Folders []WireFolder `json:"folders"`
	Uploads []WireFile   `json:"uploads"`
}

// TrashFolderID is the sentinel "parent" used to list the trash.
const TrashFolderID = "trash"

func (c *Client) DirContent(ctx context.Context, uuid string, foldersOnly bool) (DirContentResponse, error) {
	var out DirContentResponse
	err := c.PostJSON(ctx, "/v3/dir/content", DirContentRequest{UUID: uuid, FoldersOnly: foldersOnly}, &out)
	return out, err
}

type UUIDRequest struct {
	UUID string `json:"uuid"`
}

type FileResponse struct {
	Metadata string `json:"metadata"`
	Chunks   uint32 `json:"chunks"`
	Region   string `json:"region"`
	Bucket   string `json:"bucket"`
	Parent   string `json:"parent"`
}

func (c *Client) GetFile(ctx context.Context, uuid string) (FileResponse, error) {
	var out FileResponse
	err := c.PostJSON(ctx, "/v3/file", UUIDRequest{UUID: uuid}, &out)
	return out, err
}

type DirResponse struct {
	Metadata string `json:"metadata"`
	Parent   string `json:"parent"`
}

func (c *Client) GetDir(ctx context.Context, uuid string) (DirResponse, error) {
	var out DirResponse
	err := c.PostJSON(ctx, "/v3/dir", UUIDRequest{UUID: uuid}, &out)
	return out, err
}

type FileExistsRequest struct {
	Parent     string `json:"parent"`
	NameHashed string `json:"nameHashed"`
}

type FileExistsResponse struct {
	Exists bool `json:"exists"`
}

func (c *Client) FileExists(ctx context.Context, parent, nameHashed string) (FileExistsResponse, error) {
	var out FileExistsResponse
	err := c.PostJSON(ctx, "/v3/file/exists", FileExistsRequest{Parent: parent, NameHashed: nameHashed}, &out)
	return out, err
}

type DirCreateRequest struct {
	UUID             string `json:"uuid"`
	Name             string `json:"name"`
	NameHashed       string `json:"nameHashed"`
	Parent           string `json:"parent"`
	CreationTime     *int64 `json:"creationTime,omitempty"`
	ModificationTime *int64 `json:"modificationTime,omitempty"`
}

func (c *Client) DirCreate(ctx context.Context, req DirCreateRequest) error {
	return c.PostJSON(ctx, "/v3/dir/create", req, nil)
}

type UploadEmptyRequest struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	NameHashed string `json:"nameHashed"`
	Size       uint64 `json:"size"`
	Parent     string `json:"parent"`
	Mime       string `json:"mime"`
	Metadata   string `json:"metadata"`
	Version    int    `json:"version"`
}

func (c *Client) UploadEmpty(ctx context.Context, req UploadEmptyRequest) error {
	return c.PostJSON(ctx, "/v3/upload/empty", req, nil)
}

type UploadDoneRequest struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	NameHashed string `json:"nameHashed"`
	Size       uint64 `json:"size"`
	Chunks     uint32 `json:"chunks"`
	Mime       string `json:"mime"`
	Rm         string `json:"rm"`
	Metadata   string `json:"metadata"`
	Version    int    `json:"version"`
	UploadKey  string `json:"uploadKey"`
}

func (c *Client) UploadDone(ctx context.Context, req UploadDoneRequest) error {
	return c.PostJSON(ctx, "/v3/upload/done", req, nil)
}

type MoveRequest struct {
	UUID string `json:"id"`
	To   string `json:"to"`
}

func (c *Client) MoveDir(ctx context.Context, id, to string) error {
	return c.PostJSON(ctx, "/v3/dir/move", MoveRequest{UUID: id, To: to}, nil)
}

func (c *Client) MoveFile(ctx context.Context, id, to string) error {
	return c.PostJSON(ctx, "/v3/file/move", MoveRequest{UUID: id, To: to}, nil)
}

type RenameDirRequest struct {
	UUID       string `json:"id"`
	Name       string `json:"name"`
	NameHashed string `json:"nameHashed"`
}

func (c *Client) RenameDir(ctx context.Context, req RenameDirRequest) error {
	return c.PostJSON(ctx, "/v3/dir/rename", req, nil)
}

type RenameFileRequest struct {
	UUID       string `json:"id"`
	Name       string `json:"name"`
	Metadata   string `json:"metadata"`
	NameHashed string `json:"nameHashed"`
}

func (c *Client) RenameFile(ctx context.Context, req RenameFileRequest) error {
	return c.PostJSON(ctx, "/v3/file/rename", req, nil)
}

type IDRequest struct {
	ID string `json:"id"`
}

func (c *Client) TrashDir(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/dir/trash", IDRequest{ID: id}, nil)
}

func (c *Client) TrashFile(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/file/trash", IDRequest{ID: id}, nil)
}

func (c *Client) RestoreDir(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/dir/restore", IDRequest{ID: id}, nil)
}

func (c *Client) RestoreFile(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/file/restore", IDRequest{ID: id}, nil)
}

func (c *Client) DeleteDirPermanent(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/dir/delete/permanent", IDRequest{ID: id}, nil)
}

func (c *Client) DeleteFilePermanent(ctx context.Context, id string) error {
	return c.PostJSON(ctx, "/v3/file/delete/permanent", IDRequest{ID: id}, nil)
}
