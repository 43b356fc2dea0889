// Package directory glues transport, the envelope codec, and the listing
// cache together into decrypted folder/file handles. It is the shared
// fetch-and-decrypt path used by the path resolver, the batch controller's
// remote tree walks, and path operations, so none of them repeat the same
// decode loop against the listing cache.
package directory

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// Service lists and resolves folder/file handles for one Identity, caching
// results.
type Service struct {
	Transport *transport.Client
	Cache     *cache.Listing
	Identity  model.Identity
	Log       logrus.FieldLogger
}

// New builds a directory Service.
func New(tr *transport.Client, c *cache.Listing, id model.Identity, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{Transport: tr, Cache: c, Identity: id, Log: log}
}

func (s *Service) masterKeyCandidates() [][]byte {
	candidates := s.Identity.DecryptionCandidates()
	out := make([][]byte, len(candidates))
	for i, k := range candidates {
		out[i] = cryptoutil.DeriveEnvelopeKey(k)
	}
	return out
}

// ListFolders returns the decrypted, case-insensitive-name-sorted folders
// directly under parent, serving from the listing cache.
func (s *Service) ListFolders(ctx context.Context, parent string) ([]model.FolderHandle, error) {
	return s.Cache.Folders(parent, func(parent string) ([]model.FolderHandle, error) {
		resp, err := s.Transport.DirContent(ctx, parent, true)
		if err != nil {
			return nil, err
		}
		out := make([]model.FolderHandle, 0, len(resp.Folders))
		candidates := s.masterKeyCandidates()
		for _, wf := range resp.Folders {
			name, err := envelope.DecodeFolderName(candidates, wf.Name)
			if err != nil {
				name = "[Encrypted]" // reported as [Encrypted] in listings
			}
			out = append(out, model.FolderHandle{ID: wf.UUID, ParentID: wf.Parent, Name: name})
		}
		sortFolders(out)
		return out, nil
	})
}

// ListFiles returns the decrypted files directly under parent, serving from
// the listing cache.
func (s *Service) ListFiles(ctx context.Context, parent string) ([]model.FileHandle, error) {
	return s.Cache.Files(parent, func(parent string) ([]model.FileHandle, error) {
		resp, err := s.Transport.DirContent(ctx, parent, false)
		if err != nil {
			return nil, err
		}
		out := make([]model.FileHandle, 0, len(resp.Uploads))
		candidates := s.masterKeyCandidates()
		for _, wf := range resp.Uploads {
			meta, err := envelope.DecodeFileMetadata(candidates, wf.Metadata)
			if err != nil {
				out = append(out, model.FileHandle{ID: wf.UUID, ParentID: wf.Parent, Name: "[Encrypted]"})
				continue
			}
			out = append(out, model.FileHandle{
				ID:             wf.UUID,
				ParentID:       wf.Parent,
				Name:           meta.Name,
				Size:           meta.Size,
				Chunks:         wf.Chunks,
				Mime:           meta.Mime,
				FileKey:        meta.Key,
				TotalHash:      meta.Hash,
				LastModifiedMs: meta.LastModified,
				Region:         wf.Region,
				Bucket:         wf.Bucket,
			})
		}
		sortFiles(out)
		return out, nil
	})
}

// GetFile fetches and decrypts a single file's record directly, bypassing
// the listing cache. Used by download and verify, which need the record
// for exactly one id rather than a whole directory.
func (s *Service) GetFile(ctx context.Context, id string) (model.FileHandle, error) {
	resp, err := s.Transport.GetFile(ctx, id)
	if err != nil {
		return model.FileHandle{}, err
	}
	meta, err := envelope.DecodeFileMetadata(s.masterKeyCandidates(), resp.Metadata)
	if err != nil {
		return model.FileHandle{}, err
	}
	return model.FileHandle{
		ID:             id,
		ParentID:       resp.Parent,
		Name:           meta.Name,
		Size:           meta.Size,
		Chunks:         resp.Chunks,
		Mime:           meta.Mime,
		FileKey:        meta.Key,
		TotalHash:      meta.Hash,
		LastModifiedMs: meta.LastModified,
		Region:         resp.Region,
		Bucket:         resp.Bucket,
	}, nil
}

// GetFolder fetches and decrypts a single folder's record directly.
func (s *Service) GetFolder(ctx context.Context, id string) (model.FolderHandle, error) {
	resp, err := s.Transport.GetDir(ctx, id)
	if err != nil {
		return model.FolderHandle{}, err
	}
	name, err := envelope.DecodeFolderName(s.masterKeyCandidates(), resp.Metadata)
	if err != nil {
		name = "[Encrypted]"
	}
	return model.FolderHandle{ID: id, ParentID: resp.Parent, Name: name}, nil
}

// HashName computes the deterministic filename hash for name under this
// identity, used by callers that must send nameHashed on writes.
func (s *Service) HashName(name string) string {
	hmacKey := cryptoutil.DeriveFilenameHMACKey(s.Identity.CurrentMasterKey(), s.Identity.Email)
	return cryptoutil.HashFilename(hmacKey, name)
}

// sortFolders and sortFiles each sort one list case-insensitively by name,
// so repeated listings come back in the same order.
func sortFolders(items []model.FolderHandle) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}

func sortFiles(items []model.FileHandle) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
